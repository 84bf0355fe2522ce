// Package wavtest builds WAV fixtures for tests.
package wavtest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Spec describes a generated tone.
type Spec struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
	Freq       float64 // tone frequency in Hz; 0 gives silence
	Amplitude  float64 // fraction of full scale, 0..1
}

// OneSecond16k is a one second 440 Hz mono tone at 16 kHz, 16-bit.
var OneSecond16k = Spec{SampleRate: 16000, Channels: 1, BitDepth: 16, Frames: 16000, Freq: 440, Amplitude: 0.5}

// Write encodes spec to a file in a test temp dir and returns its path.
func Write(t testing.TB, spec Spec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	full := math.Ldexp(1, spec.BitDepth-1) - 1
	data := make([]int, spec.Frames*spec.Channels)
	for i := range spec.Frames {
		v := spec.Amplitude * math.Sin(2*math.Pi*spec.Freq*float64(i)/float64(spec.SampleRate))
		s := int(math.Round(v * full))
		if spec.BitDepth == 8 {
			s += 128
		}
		for ch := range spec.Channels {
			data[i*spec.Channels+ch] = s
		}
	}

	enc := wav.NewEncoder(f, spec.SampleRate, spec.BitDepth, spec.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: spec.Channels, SampleRate: spec.SampleRate},
		Data:           data,
		SourceBitDepth: spec.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// Bytes encodes spec and returns the file contents.
func Bytes(t testing.TB, spec Spec) []byte {
	t.Helper()
	data, err := os.ReadFile(Write(t, spec))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// FloatBytes encodes spec as IEEE float WAV (BitDepth 32 or 64). With
// extensible set the fmt chunk uses WAVE_FORMAT_EXTENSIBLE and carries the
// float SubFormat GUID.
func FloatBytes(t testing.TB, spec Spec, extensible bool) []byte {
	t.Helper()
	return rawWAV(t, spec, 3, extensible)
}

// IntExtensibleBytes encodes spec as integer PCM wrapped in
// WAVE_FORMAT_EXTENSIBLE.
func IntExtensibleBytes(t testing.TB, spec Spec) []byte {
	t.Helper()
	return rawWAV(t, spec, 1, true)
}

func rawWAV(t testing.TB, spec Spec, format uint16, extensible bool) []byte {
	t.Helper()
	width := spec.BitDepth / 8
	var data bytes.Buffer
	le := binary.LittleEndian
	full := math.Ldexp(1, spec.BitDepth-1) - 1
	for i := range spec.Frames {
		v := spec.Amplitude * math.Sin(2*math.Pi*spec.Freq*float64(i)/float64(spec.SampleRate))
		for range spec.Channels {
			switch {
			case format == 3 && width == 4:
				data.Write(le.AppendUint32(nil, math.Float32bits(float32(v))))
			case format == 3 && width == 8:
				data.Write(le.AppendUint64(nil, math.Float64bits(v)))
			case width == 2:
				data.Write(le.AppendUint16(nil, uint16(int16(math.Round(v*full)))))
			default:
				t.Fatalf("wavtest: unsupported format %d depth %d", format, spec.BitDepth)
			}
		}
	}

	var fmtChunk []byte
	tag := format
	if extensible {
		tag = 0xFFFE
	}
	fmtChunk = le.AppendUint16(fmtChunk, tag)
	fmtChunk = le.AppendUint16(fmtChunk, uint16(spec.Channels))
	fmtChunk = le.AppendUint32(fmtChunk, uint32(spec.SampleRate))
	fmtChunk = le.AppendUint32(fmtChunk, uint32(spec.SampleRate*spec.Channels*width))
	fmtChunk = le.AppendUint16(fmtChunk, uint16(spec.Channels*width))
	fmtChunk = le.AppendUint16(fmtChunk, uint16(spec.BitDepth))
	if extensible {
		fmtChunk = le.AppendUint16(fmtChunk, 22)
		fmtChunk = le.AppendUint16(fmtChunk, uint16(spec.BitDepth))
		fmtChunk = le.AppendUint32(fmtChunk, 0)
		// KSDATAFORMAT_SUBTYPE_* GUID: format code then the fixed tail.
		fmtChunk = le.AppendUint16(fmtChunk, format)
		fmtChunk = append(fmtChunk, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71)
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	out.Write(le.AppendUint32(nil, uint32(4+8+len(fmtChunk)+8+data.Len())))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	out.Write(le.AppendUint32(nil, uint32(len(fmtChunk))))
	out.Write(fmtChunk)
	out.WriteString("data")
	out.Write(le.AppendUint32(nil, uint32(data.Len())))
	out.Write(data.Bytes())
	return out.Bytes()
}
