// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ik5/audwave/audio"
)

const (
	// DefaultChunkSize caps a single compressed read at 512 KiB, minus a
	// margin so codecs that append padding never overflow a 512 KiB buffer.
	DefaultChunkSize = 512<<10 - 64

	// DefaultPCMBufferSize is the size of a decoded PCM chunk.
	DefaultPCMBufferSize = 32 << 10

	eventBuffer = 4
)

var (
	ErrNotOpened      = errors.New("decoder adapter is not opened")
	ErrAlreadyStarted = errors.New("decoder adapter already started")
	ErrClosed         = errors.New("decoder adapter is closed")
)

type Option func(*Adapter)

// WithChunkSize bounds every compressed read handed to the codec.
func WithChunkSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// WithPCMBufferSize sets the size of the decoded chunks.
func WithPCMBufferSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.pcmBufferSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// Adapter drives one codec over one file. Open probes the container, Start
// runs the decode and emits Events, Close releases everything.
type Adapter struct {
	path          string
	registry      *audio.Registry
	chunkSize     int
	pcmBufferSize int
	log           *slog.Logger

	mu      sync.Mutex
	file    *os.File
	input   *chunkReader
	stream  audio.Stream
	format  audio.Format
	opened  bool
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(path string, registry *audio.Registry, opts ...Option) *Adapter {
	a := &Adapter{
		path:          path,
		registry:      registry,
		chunkSize:     DefaultChunkSize,
		pcmBufferSize: DefaultPCMBufferSize,
		log:           slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.log = a.log.With("module", "decoder", "path", path)

	return a
}

// Open resolves the codec, opens the file and probes its first audio track.
func (a *Adapter) Open() (audio.Format, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return audio.Format{}, fmt.Errorf("%w: %w", audio.ErrSource, ErrClosed)
	}
	if a.opened {
		return a.format, nil
	}

	dec, err := a.registry.Lookup(a.path)
	if err != nil {
		return audio.Format{}, err
	}

	file, err := os.Open(a.path)
	if err != nil {
		return audio.Format{}, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	input := newChunkReader(file, a.chunkSize)
	stream, err := dec.Decode(input)
	if err != nil {
		file.Close()
		if errors.Is(err, audio.ErrFormat) || errors.Is(err, audio.ErrSource) {
			return audio.Format{}, err
		}
		return audio.Format{}, fmt.Errorf("%w: %w", audio.ErrSource, err)
	}

	format := stream.Format()
	if err := format.Validate(); err != nil {
		stream.Close()
		file.Close()
		return audio.Format{}, err
	}

	a.file = file
	a.input = input
	a.stream = stream
	a.format = format
	a.opened = true

	a.log.Debug("track probed",
		"sample_rate", format.SampleRate,
		"channels", format.Channels,
		"bit_depth", format.BitDepth,
		"duration", format.Duration)

	return format, nil
}

// Start runs the decode until the track ends, fails, ctx is done or the
// adapter is closed. The returned channel is closed after the last event.
func (a *Adapter) Start(ctx context.Context) (<-chan Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return nil, ErrClosed
	case !a.opened:
		return nil, ErrNotOpened
	case a.started:
		return nil, ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan Event, eventBuffer)

	a.started = true
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.pump(ctx, a.stream, a.format, events)

	return events, nil
}

func (a *Adapter) pump(ctx context.Context, stream audio.Stream, format audio.Format, events chan<- Event) {
	defer close(a.done)
	defer close(events)

	send := func(ev Event) bool {
		select {
		case events <- ev:
			if ev.Terminal() {
				a.log.Debug("stream finished", "event", ev.Kind,
					"bytes_fed", a.input.fed.Load(), "chunks", a.input.chunks.Load())
			}
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(Event{Kind: EventFormatChanged, Format: format}) {
		return
	}

	frameSize := format.FrameSize()
	size := max(a.pcmBufferSize-a.pcmBufferSize%frameSize, frameSize)
	buf := make([]byte, size)

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := stream.ReadPCM(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if !send(Event{Kind: EventPCM, PCM: chunk}) {
				return
			}
		}

		if err == io.EOF {
			send(Event{Kind: EventEndOfStream})
			return
		}
		if err != nil {
			send(Event{Kind: EventError, Err: fmt.Errorf("%w: %w", audio.ErrDecode, err)})
			return
		}
	}
}

// Format returns the probed format, zero before Open.
func (a *Adapter) Format() audio.Format {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.format
}

// BytesFed reports how many compressed bytes were handed to the codec.
func (a *Adapter) BytesFed() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.input == nil {
		return 0
	}
	return a.input.fed.Load()
}

// Close stops the decode and releases the codec and the file. It waits for
// the decode goroutine to leave the codec before closing it, and may be
// called any number of times; only the first call reports errors.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	cancel, done := a.cancel, a.done
	stream, file := a.stream, a.file
	a.stream, a.file = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	var errs []error
	if stream != nil {
		if err := stream.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if file != nil {
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		a.log.Debug("release failed", "error", err)
		return err
	}

	return nil
}
