// SPDX-License-Identifier: EPL-2.0

package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/waveform"
)

// State of a Task. Completed, Failed and Cancelled are final.
type State int32

const (
	Pending State = iota
	Decoding
	Completed
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Decoding:
		return "decoding"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is final.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// Config is shared by the tasks of one host.
type Config struct {
	Registry *audio.Registry
	Logger   *slog.Logger

	// Sink receives the task's updates from its decode goroutine. It must
	// not block.
	Sink func(Update)

	// OnTerminal is called exactly once when the task reaches a final state
	// and its decoder was released.
	OnTerminal func(*Task)

	// Normalize the final points with Scale and SilenceThreshold.
	Normalize        bool
	Scale            float64
	SilenceThreshold float64

	ChunkSize     int
	PCMBufferSize int
}

// Task runs one extraction: decode, reduce, normalize and resolve.
type Task struct {
	req    Request
	cfg    Config
	id     uuid.UUID
	log    *slog.Logger
	future *Future

	state     atomic.Int32
	startedAt atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

func NewTask(req Request, cfg Config) *Task {
	if cfg.Registry == nil {
		cfg.Registry = audio.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()

	return &Task{
		req:    req,
		cfg:    cfg,
		id:     id,
		log:    cfg.Logger.With("module", "extraction", "task", id.String(), "key", req.Key),
		future: NewFuture(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (t *Task) ID() uuid.UUID         { return t.id }
func (t *Task) Request() Request      { return t.req }
func (t *Task) Future() *Future       { return t.future }
func (t *Task) State() State          { return State(t.state.Load()) }
func (t *Task) Done() <-chan struct{} { return t.done }

// StartedAt is when the task began decoding, zero if it never did.
func (t *Task) StartedAt() time.Time {
	ns := t.startedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Start moves a pending task to decoding and runs it in its own goroutine.
// It does nothing in any other state.
func (t *Task) Start() {
	if !t.state.CompareAndSwap(int32(Pending), int32(Decoding)) {
		return
	}

	t.startedAt.Store(time.Now().UnixNano())
	t.log.Debug("decoding", "path", t.req.Path, "points", t.req.ExpectedPoints)

	go t.run()
}

// Cancel stops the task and rejects its future with audio.ErrCancelled. A
// pending task finishes at once; a decoding one finishes once its decoder
// was released. Cancel is a no-op on a finished task.
func (t *Task) Cancel() {
	for {
		switch s := t.State(); s {
		case Pending, Decoding:
			if !t.state.CompareAndSwap(int32(s), int32(Cancelled)) {
				continue
			}

			t.future.Reject(fmt.Errorf("%w: %s", audio.ErrCancelled, t.req.Key))
			t.cancel()
			t.log.Debug("cancelled", "from", s)

			if s == Pending {
				t.finish()
			}
			return
		default:
			return
		}
	}
}

// Stop cancels the task and waits until its resources were released.
func (t *Task) Stop() {
	t.Cancel()
	<-t.done
}

func (t *Task) finish() {
	t.doneOnce.Do(func() {
		t.cancel()
		close(t.done)
		if t.cfg.OnTerminal != nil {
			t.cfg.OnTerminal(t)
		}
	})
}

func (t *Task) run() {
	defer t.finish()

	points, err := t.decode()
	if err != nil {
		if !t.state.CompareAndSwap(int32(Decoding), int32(Failed)) {
			return
		}

		t.log.Warn("extraction failed", "error", err)
		t.future.Reject(err)
		t.emit(Update{Kind: UpdateFailure, Err: err})
		return
	}

	if t.cfg.Normalize {
		points = waveform.Normalize(points, t.cfg.Scale, t.cfg.SilenceThreshold)
	}

	if !t.state.CompareAndSwap(int32(Decoding), int32(Completed)) {
		return
	}

	t.log.Debug("extraction completed", "points", len(points))
	t.future.Resolve(points)
	t.emit(Update{Kind: UpdateSuccess, Progress: 1, Points: points})
}

func (t *Task) decode() ([]float32, error) {
	if _, err := os.Stat(t.req.Path); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	adapter := decoder.New(t.req.Path, t.cfg.Registry,
		decoder.WithChunkSize(t.cfg.ChunkSize),
		decoder.WithPCMBufferSize(t.cfg.PCMBufferSize),
		decoder.WithLogger(t.log),
	)
	defer func() {
		fed := adapter.BytesFed()
		if err := adapter.Close(); err != nil {
			t.log.Debug("decoder release failed", "error", err, "bytes_fed", fed)
			return
		}
		t.log.Debug("decoder released", "bytes_fed", fed)
	}()

	if _, err := adapter.Open(); err != nil {
		return nil, err
	}

	events, err := adapter.Start(t.ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	reducer := waveform.NewReducer(func(p waveform.Progress) {
		if t.State() == Decoding {
			t.emit(Update{Kind: UpdateProgress, Progress: p.Value, Points: p.Points})
		}
	})

	for ev := range events {
		switch ev.Kind {
		case decoder.EventFormatChanged:
			if err := reducer.Initialize(ev.Format, t.req.ExpectedPoints); err != nil {
				return nil, err
			}
		case decoder.EventPCM:
			if !reducer.Initialized() {
				continue
			}
			done, err := reducer.Consume(ev.PCM)
			if err != nil {
				return nil, err
			}
			if done {
				return reducer.Points(), nil
			}
		case decoder.EventError:
			return nil, ev.Err
		case decoder.EventEndOfStream:
			return t.endOfStream(reducer)
		}
	}

	return nil, audio.ErrCancelled
}

// endOfStream resolves a track that ended before all points were emitted
// with the points it produced.
func (t *Task) endOfStream(reducer *waveform.Reducer) ([]float32, error) {
	if !reducer.Initialized() {
		return nil, fmt.Errorf("%w: stream ended before its format was known", audio.ErrDecode)
	}

	points := reducer.Points()
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: stream too short for a single point", audio.ErrReduction)
	}

	if len(points) < t.req.ExpectedPoints {
		t.log.Debug("stream ended early", "points", len(points), "expected", t.req.ExpectedPoints)
	}
	if t.State() == Decoding {
		t.emit(Update{Kind: UpdateProgress, Progress: 1, Points: reducer.Points()})
	}

	return points, nil
}

func (t *Task) emit(u Update) {
	if t.cfg.Sink == nil {
		return
	}

	u.Key = t.req.Key
	t.cfg.Sink(u)
}

// IsCancelled reports whether err is the result of a cancelled extraction.
func IsCancelled(err error) bool {
	return errors.Is(err, audio.ErrCancelled)
}
