// SPDX-License-Identifier: EPL-2.0

package waveform

import "math"

const (
	// DefaultScale is the amplitude the loudest point is rescaled to.
	DefaultScale = 0.12
	// DefaultSilenceThreshold is the level under which a point is silence.
	DefaultSilenceThreshold = 0.01
)

// Normalize rescales points so the loudest one equals scale. Points under
// silenceThreshold become 0 and do not take part in finding the maximum.
// When no point reaches the threshold the maximum is 1. The input is not
// modified.
func Normalize(points []float32, scale, silenceThreshold float64) []float32 {
	// compare at the points' precision, float32(0.01) widens below 0.01
	threshold := float32(silenceThreshold)

	var maxAmplitude float32
	for _, p := range points {
		if a := abs32(p); a >= threshold {
			maxAmplitude = max(maxAmplitude, a)
		}
	}
	if maxAmplitude == 0 {
		maxAmplitude = 1
	}

	out := make([]float32, len(points))
	for i, p := range points {
		if abs32(p) < threshold {
			continue
		}
		out[i] = float32(float64(p) / float64(maxAmplitude) * scale)
	}

	return out
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
