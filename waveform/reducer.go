// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"fmt"
	"math"
	"slices"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

// Progress is reported every time a window is closed.
type Progress struct {
	// Value is emitted/expected, 1.0 once the reduction is complete.
	Value float64
	// Points emitted so far, owned by the receiver.
	Points []float32
}

// Reducer folds a PCM stream into a fixed number of RMS points. Every point
// covers exactly SamplesPerWindow samples of the first channel. The reducer
// stops at exactly the expected number of points and ignores any PCM after
// that.
//
// A Reducer is not safe for concurrent use.
type Reducer struct {
	onProgress func(Progress)

	sampleRate       int
	channelCount     int
	bitDepth         int
	fullScale        float64
	expectedPoints   int
	totalSamples     int64
	samplesPerWindow int64

	windowSampleCount  int64
	windowSumOfSquares float64
	emittedPointCount  int
	outputPoints       []float32

	carry       []byte
	initialized bool
}

// NewReducer creates a reducer reporting to onProgress, which may be nil.
func NewReducer(onProgress func(Progress)) *Reducer {
	return &Reducer{onProgress: onProgress}
}

// Initialize sizes the windows for a track. It may be called again to start
// over with a new track.
func (r *Reducer) Initialize(format audio.Format, expectedPoints int) error {
	if expectedPoints <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPoints, expectedPoints)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 || format.Duration < 0 {
		return fmt.Errorf("%w: rate %d, channels %d, duration %s",
			ErrInvalidTrack, format.SampleRate, format.Channels, format.Duration)
	}

	fullScale, err := utils.FullScale(format.BitDepth)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrFormat, err)
	}

	totalSamples := int64(math.Round(float64(format.SampleRate) * format.Duration.Seconds()))

	*r = Reducer{
		onProgress:       r.onProgress,
		sampleRate:       format.SampleRate,
		channelCount:     format.Channels,
		bitDepth:         format.BitDepth,
		fullScale:        fullScale,
		expectedPoints:   expectedPoints,
		totalSamples:     totalSamples,
		samplesPerWindow: max(totalSamples/int64(expectedPoints), 1),
		outputPoints:     make([]float32, 0, expectedPoints),
		initialized:      true,
	}

	return nil
}

// Consume folds a chunk of interleaved little-endian PCM into the windows.
// A trailing partial frame is kept for the next call. It returns true once
// the expected number of points was emitted.
func (r *Reducer) Consume(pcm []byte) (bool, error) {
	if !r.initialized {
		return false, ErrNotInitialized
	}
	if r.Done() {
		return true, nil
	}

	bytesPerSample := r.bitDepth / 8
	frameSize := r.channelCount * bytesPerSample

	if len(r.carry) > 0 {
		need := frameSize - len(r.carry)
		if len(pcm) < need {
			r.carry = append(r.carry, pcm...)
			return false, nil
		}
		r.carry = append(r.carry, pcm[:need]...)
		pcm = pcm[need:]
		done := r.sample(r.carry[:bytesPerSample])
		r.carry = r.carry[:0]
		if done {
			return true, nil
		}
	}

	for len(pcm) >= frameSize {
		if r.sample(pcm[:bytesPerSample]) {
			return true, nil
		}
		pcm = pcm[frameSize:]
	}

	r.carry = append(r.carry, pcm...)

	return false, nil
}

func (r *Reducer) sample(b []byte) bool {
	v := float64(utils.SampleAt(b, r.bitDepth)) / r.fullScale
	r.windowSumOfSquares += v * v
	r.windowSampleCount++

	if r.windowSampleCount < r.samplesPerWindow {
		return false
	}

	rms := math.Sqrt(r.windowSumOfSquares / float64(r.samplesPerWindow))
	r.outputPoints = append(r.outputPoints, float32(min(rms, 1)))
	r.emittedPointCount++
	r.windowSampleCount = 0
	r.windowSumOfSquares = 0

	if r.onProgress != nil {
		r.onProgress(Progress{Value: r.Progress(), Points: slices.Clone(r.outputPoints)})
	}

	return r.Done()
}

// Done reports whether the expected number of points was emitted.
func (r *Reducer) Done() bool {
	return r.initialized && r.emittedPointCount >= r.expectedPoints
}

// Progress is emitted/expected in [0,1].
func (r *Reducer) Progress() float64 {
	if r.expectedPoints == 0 {
		return 0
	}
	return min(float64(r.emittedPointCount)/float64(r.expectedPoints), 1)
}

// Points returns a copy of the points emitted so far.
func (r *Reducer) Points() []float32 {
	return slices.Clone(r.outputPoints)
}

func (r *Reducer) Initialized() bool       { return r.initialized }
func (r *Reducer) ExpectedPoints() int     { return r.expectedPoints }
func (r *Reducer) TotalSamples() int64     { return r.totalSamples }
func (r *Reducer) SamplesPerWindow() int64 { return r.samplesPerWindow }
