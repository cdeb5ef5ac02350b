// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	failWith   error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	return n, nil
}

func newMockStream(m *mockAiffReader, bitDepth int) *stream {
	return &stream{
		dec: m,
		format: audio.Format{
			SampleRate: m.sampleRate,
			Channels:   m.channels,
			BitDepth:   bitDepth,
		},
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not AIFF data")))
	require.ErrorIs(t, err, ErrNotAiffFile)
	assert.ErrorIs(t, err, audio.ErrSource)
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestStream_ReadPCM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		channels int
		samples  []int
	}{
		{"mono 16-bit", 16, 1, []int{0, 100, -100, 32767, -32768}},
		{"stereo 16-bit", 16, 2, []int{1, 2, 3, 4}},
		{"mono 24-bit", 24, 1, []int{8388607, -8388608, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newMockStream(&mockAiffReader{sampleRate: 8000, channels: tt.channels, samples: tt.samples}, tt.bitDepth)

			bytesPerSample := tt.bitDepth / 8
			dst := make([]byte, 64*bytesPerSample)
			n, err := s.ReadPCM(dst)
			require.NoError(t, err)
			require.Equal(t, len(tt.samples)*bytesPerSample, n)

			for i, want := range tt.samples {
				assert.Equal(t, int32(want), utils.SampleAt(dst[i*bytesPerSample:], tt.bitDepth))
			}

			n, err = s.ReadPCM(dst)
			assert.Zero(t, n)
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestStream_ReadPCM_MultipleReads(t *testing.T) {
	t.Parallel()

	samples := make([]int, 100)
	for i := range samples {
		samples[i] = i * 10
	}
	s := newMockStream(&mockAiffReader{sampleRate: 8000, channels: 2, samples: samples}, 16)

	var got []int
	dst := make([]byte, 12)
	for {
		n, err := s.ReadPCM(dst)
		for i := 0; i < n; i += 2 {
			got = append(got, int(utils.SampleAt(dst[i:], 16)))
		}
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, samples, got)
}

func TestStream_ReadPCM_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("short SSND chunk")
	s := newMockStream(&mockAiffReader{sampleRate: 8000, channels: 1, failWith: boom}, 16)

	_, err := s.ReadPCM(make([]byte, 8))
	assert.ErrorIs(t, err, boom)
}
