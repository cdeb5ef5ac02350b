// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"fmt"

	"github.com/ik5/audwave/audio"
)

var (
	ErrNotInitialized = fmt.Errorf("%w: reducer is not initialized", audio.ErrReduction)
	ErrInvalidPoints  = fmt.Errorf("%w: expected points must be positive", audio.ErrReduction)
	ErrInvalidTrack   = fmt.Errorf("%w: track cannot be reduced", audio.ErrReduction)
)
