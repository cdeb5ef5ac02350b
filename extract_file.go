// SPDX-License-Identifier: EPL-2.0

package audwave

import "context"

// ExtractFile is a convenience function that extracts expectedPoints RMS
// points from a single file and waits for the result.
//
// It builds a private Extractor from opts, so no concurrency bound or cache
// is shared with other calls. Cancelling ctx cancels the extraction.
//
// Example:
//
//	points, err := audwave.ExtractFile(ctx, "voice.mp3", 100)
//	if err != nil {
//		return err
//	}
//	// points holds 100 normalized amplitudes
func ExtractFile(ctx context.Context, path string, expectedPoints int, opts ...Option) ([]float32, error) {
	e := New(opts...)
	defer e.Close()

	future, err := e.Extract(path, path, expectedPoints)
	if err != nil {
		return nil, err
	}

	return future.Wait(ctx)
}
