// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"

	"github.com/ik5/audwave/audio"
)

var (
	ErrNotWavFile          = fmt.Errorf("%w: not a WAV file", audio.ErrSource)
	ErrNoPCMData           = fmt.Errorf("%w: WAV file has no data chunk", audio.ErrSource)
	ErrOnlyPCMSupported    = fmt.Errorf("%w: only integer PCM WAV is supported", audio.ErrFormat)
	ErrUnsupportedBitDepth = fmt.Errorf("%w: only 16, 24 and 32-bit WAV is supported", audio.ErrFormat)
)
