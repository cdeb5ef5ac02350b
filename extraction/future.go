// SPDX-License-Identifier: EPL-2.0

package extraction

import (
	"context"
	"sync/atomic"
)

const (
	futurePending int32 = iota
	futureResolved
)

// Future is the single-fire result of an extraction. The first Resolve or
// Reject wins; later calls are dropped.
type Future struct {
	state  atomic.Int32
	done   chan struct{}
	points []float32
	err    error
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future with points. It reports whether this call
// completed it.
func (f *Future) Resolve(points []float32) bool {
	if !f.state.CompareAndSwap(futurePending, futureResolved) {
		return false
	}

	f.points = points
	close(f.done)

	return true
}

// Reject completes the future with err.
func (f *Future) Reject(err error) bool {
	if !f.state.CompareAndSwap(futurePending, futureResolved) {
		return false
	}

	f.err = err
	close(f.done)

	return true
}

// Done is closed once the future is completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether the future was completed.
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future completes or ctx is done.
func (f *Future) Wait(ctx context.Context) ([]float32, error) {
	select {
	case <-f.done:
		return f.points, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
