// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Error classes shared by every stage of an extraction. Concrete errors wrap
// one of these together with their cause, so both match errors.Is.
var (
	// ErrSource covers missing files, unreadable containers and files
	// without an audio track.
	ErrSource = errors.New("audio source error")

	// ErrFormat covers codecs and sample layouts that cannot be decoded.
	ErrFormat = errors.New("unsupported audio format")

	// ErrDecode is a failure reported by a codec in the middle of a stream.
	ErrDecode = errors.New("audio decode error")

	// ErrReduction is an arithmetic or state inconsistency while reducing.
	ErrReduction = errors.New("waveform reduction error")

	// ErrCancelled is returned to callers whose extraction was stopped
	// before it completed.
	ErrCancelled = errors.New("extraction cancelled")
)
