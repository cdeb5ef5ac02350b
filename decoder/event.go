// SPDX-License-Identifier: EPL-2.0

package decoder

import "github.com/ik5/audwave/audio"

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	// EventFormatChanged carries the authoritative PCM format. It precedes
	// every EventPCM.
	EventFormatChanged EventKind = iota + 1
	// EventPCM carries a chunk of decoded interleaved PCM.
	EventPCM
	// EventEndOfStream is the terminal event of a fully decoded track.
	EventEndOfStream
	// EventError is the terminal event of a failed decode.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventFormatChanged:
		return "format-changed"
	case EventPCM:
		return "pcm"
	case EventEndOfStream:
		return "end-of-stream"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is emitted by a running Adapter.
type Event struct {
	Kind   EventKind
	Format audio.Format
	// PCM is owned by the receiver.
	PCM []byte
	Err error
}

// Terminal reports whether no further events follow e.
func (e Event) Terminal() bool {
	return e.Kind == EventEndOfStream || e.Kind == EventError
}
