// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"errors"
	"io"
)

// FullReadSeeker fills every Read completely unless the source ends first.
// go-audio decodes a PCM buffer from a single Read and drops a trailing
// partial sample, so the reads under it must not come back short.
type FullReadSeeker struct {
	io.ReadSeeker
}

func (f FullReadSeeker) Read(p []byte) (int, error) {
	n, err := io.ReadFull(f.ReadSeeker, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}

	return n, err
}
