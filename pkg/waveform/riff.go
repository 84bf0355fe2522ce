package waveform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// header is the part of the fmt chunk Decode needs.
type header struct {
	format   uint16 // SubFormat code for extensible files
	channels int
	rate     int
	depth    int
}

// scan walks the RIFF chunks of r up to the data chunk and returns the parsed
// fmt header with the data chunk positioned at its first byte.
func scan(r io.Reader) (header, *riff.Chunk, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return header{}, nil, err
	}
	if p.Format != riff.WavFormatID {
		return header{}, nil, fmt.Errorf("%s - %w", p.Format, riff.ErrFmtNotSupported)
	}

	var (
		h      header
		hasFmt bool
	)
	for {
		ch, err := p.NextChunk()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return header{}, nil, err
		}
		switch ch.ID {
		case riff.FmtID:
			if h, err = readFmt(ch); err != nil {
				return header{}, nil, err
			}
			hasFmt = true
		case riff.DataFormatID:
			if !hasFmt {
				return header{}, nil, errors.New("data chunk before fmt chunk")
			}
			return h, ch, nil
		default:
			ch.Drain()
		}
	}
	if !hasFmt {
		return header{}, nil, errors.New("missing fmt chunk")
	}
	return header{}, nil, errors.New("missing data chunk")
}

func readFmt(ch *riff.Chunk) (header, error) {
	if ch.Size < 16 {
		return header{}, fmt.Errorf("fmt chunk too short (%d bytes)", ch.Size)
	}
	raw := make([]byte, ch.Size)
	if _, err := io.ReadFull(ch, raw); err != nil {
		return header{}, fmt.Errorf("read fmt chunk: %w", err)
	}

	le := binary.LittleEndian
	h := header{
		format:   le.Uint16(raw[0:]),
		channels: int(le.Uint16(raw[2:])),
		rate:     int(le.Uint32(raw[4:])),
		depth:    int(le.Uint16(raw[14:])),
	}
	if h.format == formatExtensible {
		// cbSize, valid bits and channel mask precede the SubFormat GUID.
		if len(raw) < 26 {
			return header{}, errors.New("extensible fmt chunk without SubFormat")
		}
		h.format = le.Uint16(raw[24:])
	}
	return h, nil
}
