// SPDX-License-Identifier: EPL-2.0

package extraction

// UpdateKind tags the variant carried by an Update.
type UpdateKind int

const (
	UpdateProgress UpdateKind = iota + 1
	UpdateSuccess
	UpdateFailure
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateProgress:
		return "progress"
	case UpdateSuccess:
		return "success"
	case UpdateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Update is what a task reports to its sink.
//
// Progress updates carry the raw points emitted so far; Success carries the
// final, possibly normalized, points; Failure carries Err.
type Update struct {
	Kind     UpdateKind
	Key      string
	Progress float64
	Points   []float32
	Err      error
}
