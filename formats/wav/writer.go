// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

// WritePCM writes a canonical 44-byte header PCM WAV holding the interleaved
// samples at f's rate, channel count and bit depth. It does not need to seek,
// so w may be any writer.
func WritePCM(w io.Writer, f audio.Format, samples []int) error {
	if f.Channels <= 0 || f.SampleRate <= 0 {
		return fmt.Errorf("%w: invalid output format", audio.ErrFormat)
	}
	if _, err := utils.FullScale(f.BitDepth); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrFormat, err)
	}

	bytesPerSample := f.BitDepth / 8
	byteRate := uint32(f.SampleRate * f.Channels * bytesPerSample)
	blockAlign := uint16(f.Channels * bytesPerSample)
	dataSize := uint32(len(samples) * bytesPerSample)

	header := make([]byte, 44)

	// RIFF header (12 bytes)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], uint16(f.BitDepth))

	// data chunk header (8 bytes)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}

	const chunkSamples = 8192
	buf := make([]byte, min(len(samples), chunkSamples)*bytesPerSample)

	for i := 0; i < len(samples); i += chunkSamples {
		chunk := samples[i:min(i+chunkSamples, len(samples))]
		out := buf[:len(chunk)*bytesPerSample]
		for j, s := range chunk {
			utils.PutSample(out[j*bytesPerSample:], s, f.BitDepth)
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing wav data: %w", err)
		}
	}

	return nil
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	wide := make([]int, len(samples))
	for i, s := range samples {
		wide[i] = int(s)
	}

	return WritePCM(w, audio.Format{SampleRate: sampleRate, Channels: 1, BitDepth: 16}, wide)
}
