// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"

	"github.com/ik5/audwave/audio"
)

// ErrUnsupportedBitDepth indicates a sample size other than 16, 24 or 32 bits
var ErrUnsupportedBitDepth = fmt.Errorf("%w: only 16, 24 and 32-bit FLAC is supported", audio.ErrFormat)
