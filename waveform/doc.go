// SPDX-License-Identifier: EPL-2.0

// Package waveform reduces decoded PCM into RMS amplitude points.
//
// A Reducer is sized from the track format and the number of points wanted,
// so that a track of any length yields the same number of points:
//
//	r := waveform.NewReducer(func(p waveform.Progress) {
//		fmt.Printf("%.0f%%\n", p.Value*100)
//	})
//	if err := r.Initialize(format, 100); err != nil {
//		return err
//	}
//	for chunk := range chunks {
//		done, err := r.Consume(chunk)
//		...
//	}
//	points := waveform.Normalize(r.Points(), waveform.DefaultScale, waveform.DefaultSilenceThreshold)
package waveform
