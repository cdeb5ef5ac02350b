// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// stream wraps go-audio aiff.Decoder to implement audio.Stream. Samples are
// decoded from big-endian by go-audio and re-encoded little-endian here.
type stream struct {
	dec    aiffReader
	format audio.Format
	intBuf *goaudio.IntBuffer
}

func (s *stream) Format() audio.Format { return s.format }
func (s *stream) Close() error         { return nil }

func (s *stream) ReadPCM(dst []byte) (int, error) {
	channels := s.format.Channels
	bytesPerSample := s.format.BitDepth / 8

	samples := (len(dst) / s.format.FrameSize()) * channels
	if samples == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < samples {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, samples),
			Format:         s.dec.Format(),
			SourceBitDepth: s.format.BitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:samples]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	n -= n % channels
	for i, v := range s.intBuf.Data[:n] {
		utils.PutSample(dst[i*bytesPerSample:], v, s.format.BitDepth)
	}

	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("reading aiff data: %w", err)
		}
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return n * bytesPerSample, fmt.Errorf("reading aiff data: %w", err)
	}

	return n * bytesPerSample, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(utils.FullReadSeeker{ReadSeeker: rs})
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	return &stream{
		dec: dec,
		format: audio.Format{
			SampleRate: format.SampleRate,
			Channels:   format.NumChannels,
			BitDepth:   bitDepth,
			Duration:   audio.FramesDuration(int64(dec.NumSampleFrames), format.SampleRate),
		},
	}, nil
}
