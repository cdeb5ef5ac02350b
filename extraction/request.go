// SPDX-License-Identifier: EPL-2.0

package extraction

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid extraction request")

// Request identifies one extraction. A new request for the same Key
// supersedes any previous one.
type Request struct {
	Key            string
	Path           string
	ExpectedPoints int
}

func NewRequest(key, path string, expectedPoints int) (Request, error) {
	switch {
	case key == "":
		return Request{}, fmt.Errorf("%w: empty key", ErrInvalidRequest)
	case path == "":
		return Request{}, fmt.Errorf("%w: empty path", ErrInvalidRequest)
	case expectedPoints <= 0:
		return Request{}, fmt.Errorf("%w: expected points %d", ErrInvalidRequest, expectedPoints)
	}

	return Request{Key: key, Path: path, ExpectedPoints: expectedPoints}, nil
}
