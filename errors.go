// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"errors"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/extraction"
)

// Error classes of a failed extraction. Match them with errors.Is.
var (
	ErrSource         = audio.ErrSource
	ErrFormat         = audio.ErrFormat
	ErrDecode         = audio.ErrDecode
	ErrReduction      = audio.ErrReduction
	ErrCancelled      = audio.ErrCancelled
	ErrInvalidRequest = extraction.ErrInvalidRequest

	ErrClosed = errors.New("extractor is closed")
)
