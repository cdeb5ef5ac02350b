// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
	"github.com/jfreymuth/oggvorbis"
)

const bitDepth = 16

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type stream struct {
	dec      oggReader
	format   audio.Format
	floatBuf []float32
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Close() error         { return nil }

func (s *stream) ReadPCM(dst []byte) (int, error) {
	channels := s.format.Channels
	samples := (len(dst) / s.format.FrameSize()) * channels
	if samples == 0 {
		return 0, nil
	}

	if cap(s.floatBuf) < samples {
		s.floatBuf = make([]float32, samples)
	}
	s.floatBuf = s.floatBuf[:samples]

	// oggvorbis reports interleaved float values, not frames
	n, err := s.dec.Read(s.floatBuf)
	n -= n % channels

	for i, v := range s.floatBuf[:n] {
		utils.PutSample(dst[i*2:], int(utils.Float32ToInt16(v)), bitDepth)
	}

	if err == io.EOF {
		if n == 0 {
			return 0, io.EOF
		}
		return n * 2, nil
	}
	if err != nil {
		return n * 2, fmt.Errorf("decoding vorbis packet: %w", err)
	}

	return n * 2, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	return newStream(dec), nil
}

func newStream(dec oggReader) *stream {
	sampleRate := dec.SampleRate()

	return &stream{
		dec: dec,
		format: audio.Format{
			SampleRate: sampleRate,
			Channels:   dec.Channels(),
			BitDepth:   bitDepth,
			Duration:   audio.FramesDuration(dec.Length(), sampleRate),
		},
		floatBuf: make([]float32, 4096),
	}
}
