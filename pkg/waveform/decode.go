// Package waveform decodes WAV audio and renders its waveform.
//
// Decoding keeps the file's native sample rate; channels are averaged into a
// single mono signal normalized to [-1, 1].
package waveform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// ErrDecode is returned for empty, corrupt or unsupported audio.
var ErrDecode = errors.New("waveform: cannot decode audio")

// WAV format tags. Extensible files carry the real encoding in the first two
// bytes of their SubFormat GUID.
const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// Clip is decoded audio.
type Clip struct {
	// Samples holds the mono signal, one value per frame, in [-1, 1].
	Samples []float32

	// SampleRate is the native rate of the source file in Hz.
	SampleRate int

	// Channels and BitDepth describe the source encoding.
	Channels int
	BitDepth int
}

// Len returns the number of samples.
func (c *Clip) Len() int {
	return len(c.Samples)
}

// Seconds returns the clip length in seconds.
func (c *Clip) Seconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	return time.Duration(c.Seconds() * float64(time.Second))
}

// Summary formats the rate and duration line shown to users,
// e.g. "Sample Rate: 16000, Duration: 1.00s".
func (c *Clip) Summary() string {
	return fmt.Sprintf("Sample Rate: %d, Duration: %.2fs", c.SampleRate, c.Seconds())
}

// Peak returns the largest absolute amplitude.
func (c *Clip) Peak() float32 {
	var peak float32
	for _, s := range c.Samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root mean square amplitude.
func (c *Clip) RMS() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(c.Samples)))
}

// DecodeFile decodes the WAV file at path.
func DecodeFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a complete WAV stream. Integer PCM and 32 or 64-bit IEEE
// float are supported, either plain or wrapped in WAVE_FORMAT_EXTENSIBLE.
func Decode(r io.ReadSeeker) (*Clip, error) {
	h, data, err := scan(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if h.rate <= 0 || h.channels <= 0 {
		return nil, fmt.Errorf("%w: invalid format (rate %d, channels %d)", ErrDecode, h.rate, h.channels)
	}

	switch {
	case h.format == formatPCM:
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return decodePCM(r)
	case h.format == formatFloat && (h.depth == 32 || h.depth == 64):
		return decodeFloat(data, h)
	case h.format == formatFloat:
		return nil, fmt.Errorf("%w: unsupported float depth %d", ErrDecode, h.depth)
	default:
		return nil, fmt.Errorf("%w: unsupported WAV encoding %#x", ErrDecode, h.format)
	}
}

// decodePCM decodes integer PCM with go-audio.
func decodePCM(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrDecode)
	}
	if d.WavAudioFormat != formatPCM && d.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: unsupported WAV encoding %d", ErrDecode, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	channels := int(d.NumChans)
	depth := int(d.BitDepth)
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, fmt.Errorf("%w: no audio samples", ErrDecode)
	}

	return &Clip{
		Samples:    toMono(buf.Data[:frames*channels], channels, depth),
		SampleRate: int(d.SampleRate),
		Channels:   channels,
		BitDepth:   depth,
	}, nil
}

// decodeFloat reads IEEE float samples from the data chunk. Values are kept
// as stored, without clipping.
func decodeFloat(data *riff.Chunk, h header) (*Clip, error) {
	width := h.depth / 8
	raw, err := io.ReadAll(io.LimitReader(data, int64(data.Size)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	frames := len(raw) / (width * h.channels)
	if frames == 0 {
		return nil, fmt.Errorf("%w: no audio samples", ErrDecode)
	}

	samples := mixDown(frames, h.channels, func(i int) float64 {
		b := raw[i*width:]
		if width == 4 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	})
	return &Clip{
		Samples:    samples,
		SampleRate: h.rate,
		Channels:   h.channels,
		BitDepth:   h.depth,
	}, nil
}

// toMono averages interleaved integer PCM into normalized float samples.
func toMono(data []int, channels, depth int) []float32 {
	scale := math.Ldexp(1, depth-1)
	var offset float64
	if depth == 8 {
		// 8-bit WAV is unsigned.
		offset = 128
	}
	return mixDown(len(data)/channels, channels, func(i int) float64 {
		return (float64(data[i]) - offset) / scale
	})
}

// mixDown averages frames of interleaved samples, where at returns the
// normalized value of the i-th interleaved sample.
func mixDown(frames, channels int, at func(i int) float64) []float32 {
	out := make([]float32, frames)
	for i := range out {
		var sum float64
		for ch := range channels {
			sum += at(i*channels + ch)
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}
