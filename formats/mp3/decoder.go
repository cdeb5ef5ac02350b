// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audwave/audio"
)

const (
	// go-mp3 always emits 16-bit little-endian stereo
	channels   = 2
	bitDepth   = 16
	frameBytes = channels * bitDepth / 8
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type stream struct {
	dec    mp3Reader
	format audio.Format
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Close() error         { return nil }

func (s *stream) ReadPCM(dst []byte) (int, error) {
	want := len(dst) - len(dst)%frameBytes
	if want == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:want])
	if rem := n % frameBytes; rem != 0 && err == nil {
		// complete the frame so callers never see a split sample
		var m int
		m, err = io.ReadFull(s.dec, dst[n:n+frameBytes-rem])
		n += m
	}
	n -= n % frameBytes

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("decoding mp3 frame: %w", err)
	}

	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	return newStream(dec), nil
}

func newStream(dec mp3Reader) *stream {
	sampleRate := dec.SampleRate()

	// Length is only known when the input can seek
	duration := audio.FramesDuration(dec.Length()/frameBytes, sampleRate)

	return &stream{
		dec: dec,
		format: audio.Format{
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
			Duration:   duration,
		},
	}
}
