// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a minimal WAV file, optionally with a junk chunk
// placed before the fmt chunk.
func createWAVFile(audioFormat, sampleRate, channels, bitsPerSample int, samples []int, junk bool) []byte {
	buf := new(bytes.Buffer)

	bytesPerSample := bitsPerSample / 8
	dataSize := uint32(len(samples) * bytesPerSample)
	riffSize := 36 + dataSize
	if junk {
		riffSize += 12
	}

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	if junk {
		buf.WriteString("junk")
		binary.Write(buf, binary.LittleEndian, uint32(4))
		buf.Write([]byte{0, 0, 0, 0})
	}

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(audioFormat))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	// data chunk
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)

	sample := make([]byte, 4)
	for _, s := range samples {
		if bitsPerSample == 8 {
			buf.WriteByte(byte(s))
			continue
		}
		utils.PutSample(sample, s, bitsPerSample)
		buf.Write(sample[:bytesPerSample])
	}

	return buf.Bytes()
}

func TestDecoder_ValidWAVFile(t *testing.T) {
	t.Parallel()

	samples := make([]int, 8000)
	wavData := createWAVFile(formatPCM, 8000, 1, 16, samples, false)

	stream, err := Decoder{}.Decode(bytes.NewReader(wavData))
	require.NoError(t, err)
	require.NotNil(t, stream)
	defer stream.Close()

	format := stream.Format()
	assert.Equal(t, 8000, format.SampleRate)
	assert.Equal(t, 1, format.Channels)
	assert.Equal(t, 16, format.BitDepth)
	assert.Equal(t, time.Second, format.Duration)
}

func TestDecoder_StereoWAVFile(t *testing.T) {
	t.Parallel()

	samples := []int{100, 200, 300, 400, 500, 600}
	wavData := createWAVFile(formatPCM, 44100, 2, 16, samples, false)

	stream, err := Decoder{}.Decode(bytes.NewReader(wavData))
	require.NoError(t, err)

	assert.Equal(t, 44100, stream.Format().SampleRate)
	assert.Equal(t, 2, stream.Format().Channels)
	assert.Equal(t, audio.FramesDuration(3, 44100), stream.Format().Duration)
}

func TestDecoder_NotWAVFile(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("NOT A WAV FILE DATA")))
	require.ErrorIs(t, err, ErrNotWavFile)
	assert.ErrorIs(t, err, audio.ErrSource)
}

func TestDecoder_TruncatedHeader(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("RIFF\x00")))
	assert.Error(t, err)
}

func TestDecoder_EightBitRejected(t *testing.T) {
	t.Parallel()

	wavData := createWAVFile(formatPCM, 8000, 1, 8, []int{1, 2, 3, 4}, false)

	_, err := Decoder{}.Decode(bytes.NewReader(wavData))
	require.ErrorIs(t, err, ErrUnsupportedBitDepth)
	assert.ErrorIs(t, err, audio.ErrFormat)
}

func TestDecoder_NonPCMFormat(t *testing.T) {
	t.Parallel()

	// IEEE float
	wavData := createWAVFile(3, 8000, 1, 32, []int{0, 0}, false)

	_, err := Decoder{}.Decode(bytes.NewReader(wavData))
	assert.Error(t, err)
}

func TestDecoder_WithUnknownChunks(t *testing.T) {
	t.Parallel()

	wavData := createWAVFile(formatPCM, 8000, 1, 16, []int{100, 200}, true)

	stream, err := Decoder{}.Decode(bytes.NewReader(wavData))
	require.NoError(t, err)

	pcm := make([]byte, 16)
	n, err := stream.ReadPCM(pcm)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, int32(100), utils.SampleAt(pcm[0:], 16))
	assert.Equal(t, int32(200), utils.SampleAt(pcm[2:], 16))
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	wavData := createWAVFile(formatPCM, 8000, 1, 16, []int{1, 2, 3}, false)

	// io.MultiReader hides Seek, forcing the buffered path
	stream, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(wavData)))
	require.NoError(t, err)
	assert.Equal(t, 8000, stream.Format().SampleRate)
}

func TestStream_ReadPCM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		channels int
		samples  []int
	}{
		{"mono 16-bit", 16, 1, []int{0, 16384, 32767, -16384, -32768}},
		{"stereo 16-bit", 16, 2, []int{1, -1, 2, -2, 3, -3}},
		{"mono 24-bit", 24, 1, []int{0, 4194304, 8388607, -8388608}},
		{"stereo 32-bit", 32, 2, []int{0, 1 << 30, -(1 << 30), 2147483647}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wavData := createWAVFile(formatPCM, 8000, tt.channels, tt.bitDepth, tt.samples, false)
			stream, err := Decoder{}.Decode(bytes.NewReader(wavData))
			require.NoError(t, err)

			bytesPerSample := tt.bitDepth / 8
			var got []int
			pcm := make([]byte, 2*tt.channels*bytesPerSample)
			for {
				n, err := stream.ReadPCM(pcm)
				for i := 0; i < n; i += bytesPerSample {
					got = append(got, int(utils.SampleAt(pcm[i:], tt.bitDepth)))
				}
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
			}

			assert.Equal(t, tt.samples, got)
		})
	}
}

func TestStream_ReadPCM_BufferSmallerThanFrame(t *testing.T) {
	t.Parallel()

	wavData := createWAVFile(formatPCM, 8000, 2, 16, []int{1, 2}, false)
	stream, err := Decoder{}.Decode(bytes.NewReader(wavData))
	require.NoError(t, err)

	n, err := stream.ReadPCM(make([]byte, 3))
	assert.NoError(t, err)
	assert.Zero(t, n)
}

// cappedReader returns at most limit bytes per Read, as the decoder adapter's
// chunk reader does.
type cappedReader struct {
	*bytes.Reader
	limit int
}

func (c cappedReader) Read(p []byte) (int, error) {
	if len(p) > c.limit {
		p = p[:c.limit]
	}
	return c.Reader.Read(p)
}

func TestStream_ReadPCM_CappedSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		channels int
		limit    int
	}{
		{"stereo 16-bit, odd cap", 16, 2, 1001},
		{"stereo 16-bit, even cap", 16, 2, 4096},
		{"mono 24-bit, cap not a multiple of 3", 24, 1, 4096},
		{"mono 24-bit, small cap", 24, 1, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]int, 3000*tt.channels)
			for i := range samples {
				samples[i] = (i%97 - 48) * 300
			}

			wavData := createWAVFile(formatPCM, 8000, tt.channels, tt.bitDepth, samples, false)
			src := cappedReader{Reader: bytes.NewReader(wavData), limit: tt.limit}
			stream, err := Decoder{}.Decode(src)
			require.NoError(t, err)

			bytesPerSample := tt.bitDepth / 8
			var got []int
			pcm := make([]byte, 2048*tt.channels*bytesPerSample)
			for {
				n, err := stream.ReadPCM(pcm)
				require.Zero(t, n%(tt.channels*bytesPerSample))
				for i := 0; i < n; i += bytesPerSample {
					got = append(got, int(utils.SampleAt(pcm[i:], tt.bitDepth)))
				}
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
			}

			assert.Equal(t, samples, got)
		})
	}
}
