// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

const formatPCM = 1

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type stream struct {
	dec    pcmReader
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
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: s.format.SampleRate},
			SourceBitDepth: s.format.BitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:samples]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("reading wav data: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	// drop a trailing partial frame from a truncated data chunk
	n -= n % channels
	for i, v := range s.intBuf.Data[:n] {
		utils.PutSample(dst[i*bytesPerSample:], v, s.format.BitDepth)
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
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(utils.FullReadSeeker{ReadSeeker: rs})
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, ErrOnlyPCMSupported
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPCMData, err)
	}

	channels := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	var frames int64
	if frameSize := int64(channels * bitDepth / 8); frameSize > 0 {
		frames = dec.PCMLen() / frameSize
	}

	return &stream{
		dec: dec,
		format: audio.Format{
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
			Duration:   audio.FramesDuration(frames, sampleRate),
		},
	}, nil
}
