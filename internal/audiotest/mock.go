// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

// Waveform yields the sample value in [-1,1] for a frame and channel.
type Waveform func(frame int, channel int) float64

// Silence is an all-zero waveform.
func Silence(int, int) float64 { return 0 }

// Constant returns a waveform with the same value on every channel.
func Constant(v float64) Waveform {
	return func(int, int) float64 { return v }
}

// Sine returns a sine tone at frequency Hz.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(frame int, _ int) float64 {
		t := float64(frame) / float64(sampleRate)
		return math.Sin(2 * math.Pi * frequency * t)
	}
}

// Samples renders frames of w as interleaved integer samples at bitDepth.
func Samples(channels, bitDepth, frames int, w Waveform) []int {
	scale, err := utils.FullScale(bitDepth)
	if err != nil {
		panic(err)
	}
	maxVal := scale - 1

	out := make([]int, frames*channels)
	for f := range frames {
		for ch := range channels {
			v := w(f, ch) * scale
			v = math.Max(math.Min(v, maxVal), -scale)
			out[f*channels+ch] = int(v)
		}
	}

	return out
}

// PCM renders frames of w as interleaved little-endian PCM at bitDepth.
func PCM(channels, bitDepth, frames int, w Waveform) []byte {
	samples := Samples(channels, bitDepth, frames, w)
	bytesPerSample := bitDepth / 8

	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		utils.PutSample(out[i*bytesPerSample:], s, bitDepth)
	}

	return out
}

// ErrInjected is returned by a MockStream configured to fail.
var ErrInjected = errors.New("injected codec failure")

// MockStream is a test helper that implements audio.Stream over generated PCM.
type MockStream struct {
	format    audio.Format
	pcm       []byte
	offset    int
	failAfter int // bytes served before ReadPCM fails, negative disables
	closed    atomic.Int32
}

// NewMockStream creates a stream of frames generated by w. The reported
// duration matches the frame count.
func NewMockStream(sampleRate, channels, frames int, w Waveform) *MockStream {
	format := audio.Format{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   16,
		Duration:   audio.FramesDuration(int64(frames), sampleRate),
	}

	return &MockStream{
		format:    format,
		pcm:       PCM(channels, 16, frames, w),
		failAfter: -1,
	}
}

// FailAfter makes ReadPCM return ErrInjected once n bytes were served.
func (m *MockStream) FailAfter(n int) *MockStream {
	m.failAfter = n
	return m
}

// WithDuration overrides the duration the stream reports.
func (m *MockStream) WithDuration(d time.Duration) *MockStream {
	m.format.Duration = d
	return m
}

// Closed reports how many times Close was called.
func (m *MockStream) Closed() int { return int(m.closed.Load()) }

func (m *MockStream) Format() audio.Format { return m.format }

func (m *MockStream) Close() error {
	m.closed.Add(1)
	return nil
}

func (m *MockStream) ReadPCM(dst []byte) (int, error) {
	if m.failAfter >= 0 && m.offset >= m.failAfter {
		return 0, ErrInjected
	}
	if m.offset >= len(m.pcm) {
		return 0, io.EOF
	}

	end := len(m.pcm)
	if m.failAfter >= 0 {
		end = min(end, m.failAfter)
	}
	frameSize := m.format.FrameSize()
	want := len(dst) - len(dst)%frameSize

	n := copy(dst[:want], m.pcm[m.offset:end])
	n -= n % frameSize
	m.offset += n

	return n, nil
}

// MockDecoder hands out a prepared stream regardless of its input.
type MockDecoder struct {
	Stream audio.Stream
	Err    error
}

func (d MockDecoder) Decode(r io.Reader) (audio.Stream, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Stream, nil
}
