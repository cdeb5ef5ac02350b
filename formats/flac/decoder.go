// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/tphakala/flac"
)

// frameReader is an interface for flac.Decoder to allow testing
type frameReader interface {
	Next() ([]byte, error)
}

type stream struct {
	dec     frameReader
	format  audio.Format
	pending []byte // decoded bytes of the current FLAC frame not yet handed out
	eof     bool
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Close() error         { return nil }

func (s *stream) ReadPCM(dst []byte) (int, error) {
	frameSize := s.format.FrameSize()
	want := len(dst) - len(dst)%frameSize
	if want == 0 {
		return 0, nil
	}

	written := 0
	for written < want {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}

			frame, err := s.dec.Next()
			if err == io.EOF {
				s.eof = true
				break
			}
			if err != nil {
				return written, fmt.Errorf("decoding flac frame: %w", err)
			}
			s.pending = frame
			continue
		}

		n := copy(dst[written:want], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}

	return written, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	dec, err := flac.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	switch dec.BitsPerSample {
	case 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}

	return &stream{
		dec: dec,
		format: audio.Format{
			SampleRate: dec.SampleRate,
			Channels:   dec.NChannels,
			BitDepth:   dec.BitsPerSample,
			Duration:   audio.FramesDuration(int64(dec.TotalSamples), dec.SampleRate),
		},
	}, nil
}
