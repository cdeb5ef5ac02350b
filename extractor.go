// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/ik5/audwave/admission"
	"github.com/ik5/audwave/extraction"
	"github.com/ik5/audwave/metrics"
)

// Extractor runs waveform extractions for many keys at once. Each key has
// at most one tracked extraction: a new request for the same key supersedes
// the previous one. Decoding is bounded by an admission controller.
type Extractor struct {
	log        *slog.Logger
	controller *admission.Controller
	metrics    *metrics.ExtractionMetrics
	cache      *cache.Cache
	listener   Listener
	taskConfig extraction.Config

	updates      chan extraction.Update
	dispatchDone chan struct{}

	mu        sync.Mutex
	tasks     map[string]*extraction.Task
	live      map[*extraction.Task]struct{}
	cacheKeys map[uuid.UUID]string
	closed    bool

	closeOnce sync.Once
}

func New(opts ...Option) *Extractor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}

	e := &Extractor{
		log:       o.logger.With("module", "extractor"),
		metrics:   o.metrics,
		listener:  o.listener,
		tasks:     make(map[string]*extraction.Task),
		live:      make(map[*extraction.Task]struct{}),
		cacheKeys: make(map[uuid.UUID]string),
	}

	e.controller = admission.New(
		admission.WithLogger(o.logger),
		admission.WithObserver(o.metrics.SetAdmission),
	)

	if o.cacheTTL > 0 {
		e.cache = cache.New(o.cacheTTL, 2*o.cacheTTL)
	}

	e.taskConfig = extraction.Config{
		Registry:         o.registry,
		Logger:           o.logger,
		OnTerminal:       e.onTerminal,
		Normalize:        o.normalize,
		Scale:            o.scale,
		SilenceThreshold: o.threshold,
		ChunkSize:        o.chunkSize,
		PCMBufferSize:    o.pcmBufferSize,
	}

	if e.listener != nil {
		e.updates = make(chan extraction.Update, o.updateBuffer)
		e.dispatchDone = make(chan struct{})
		e.taskConfig.Sink = e.publish
		go e.dispatch()
	}

	return e
}

// ConfigureConcurrency sets how many extractions decode at once. Only the
// first call has an effect; zero or less removes the bound.
func (e *Extractor) ConfigureConcurrency(maxParallel int) bool {
	return e.controller.Configure(maxParallel)
}

// Extract starts extracting expectedPoints RMS points from path under key,
// superseding any extraction tracked for key. The returned future resolves
// with the points, or with an error matching one of the Err* classes.
func (e *Extractor) Extract(path, key string, expectedPoints int) (*extraction.Future, error) {
	req, err := extraction.NewRequest(key, path, expectedPoints)
	if err != nil {
		return nil, err
	}

	cacheKey := e.cacheKey(req)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}

	old := e.tasks[key]

	if points, ok := e.cached(cacheKey); ok {
		delete(e.tasks, key)
		future := extraction.NewFuture()
		future.Resolve(points)
		e.publish(extraction.Update{Kind: extraction.UpdateProgress, Key: key, Progress: 1, Points: points})
		e.publish(extraction.Update{Kind: extraction.UpdateSuccess, Key: key, Progress: 1, Points: points})
		e.mu.Unlock()

		e.log.Debug("served from cache", "key", key, "path", path)
		if old != nil {
			old.Cancel()
		}
		return future, nil
	}

	task := extraction.NewTask(req, e.taskConfig)
	e.tasks[key] = task
	e.live[task] = struct{}{}
	if cacheKey != "" {
		e.cacheKeys[task.ID()] = cacheKey
	}
	e.mu.Unlock()

	var superseded admission.Job
	if old != nil {
		superseded = old
		e.log.Debug("superseding extraction", "key", key, "previous", old.ID())
	}

	e.controller.Submit(task, superseded)
	if old != nil {
		// Cancel rather than Stop: the caller does not wait for the old
		// decoder, its permit comes back through onTerminal once it exits.
		old.Cancel()
	}

	// a task cancelled before it reached the controller released nothing
	if task.State().Terminal() {
		e.controller.Release(task)
	}

	return task.Future(), nil
}

// Cancel stops the extraction tracked for key. It reports whether there was
// one.
func (e *Extractor) Cancel(key string) bool {
	e.mu.Lock()
	task := e.tasks[key]
	e.mu.Unlock()

	if task == nil {
		return false
	}

	task.Cancel()
	return true
}

// CancelAll stops every extraction and gives the admission controller all
// its permits back.
func (e *Extractor) CancelAll() {
	e.controller.Reset()

	for _, task := range e.liveTasks() {
		task.Cancel()
	}
}

// Close cancels every extraction, waits for them to release their decoders
// and stops delivering updates. Extract fails with ErrClosed afterwards.
func (e *Extractor) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		e.CancelAll()
		for _, task := range e.liveTasks() {
			task.Stop()
		}

		if e.updates != nil {
			close(e.updates)
			<-e.dispatchDone
		}

		// go-cache's janitor cannot be stopped, flush what it holds
		if e.cache != nil {
			e.cache.Flush()
		}

		e.log.Debug("extractor closed")
	})

	return nil
}

// Pending returns the keys with a tracked extraction.
func (e *Extractor) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]string, 0, len(e.tasks))
	for key := range e.tasks {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

// Stats is a snapshot of the admission controller.
func (e *Extractor) Stats() admission.Stats {
	return e.controller.Stats()
}

func (e *Extractor) liveTasks() []*extraction.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := make([]*extraction.Task, 0, len(e.live))
	for task := range e.live {
		tasks = append(tasks, task)
	}

	return tasks
}

func (e *Extractor) onTerminal(task *extraction.Task) {
	e.controller.Release(task)

	req := task.Request()
	state := task.State()

	e.mu.Lock()
	if state == extraction.Completed {
		e.store(e.cacheKeys[task.ID()], task.Future())
	}
	if e.tasks[req.Key] == task {
		delete(e.tasks, req.Key)
	}
	delete(e.live, task)
	delete(e.cacheKeys, task.ID())
	e.mu.Unlock()

	var elapsed time.Duration
	if started := task.StartedAt(); !started.IsZero() {
		elapsed = time.Since(started)
	}

	switch state {
	case extraction.Completed:
		e.metrics.RecordExtraction(metrics.OutcomeCompleted, elapsed)
	case extraction.Failed:
		e.metrics.RecordExtraction(metrics.OutcomeFailed, elapsed)
	default:
		e.metrics.RecordExtraction(metrics.OutcomeCancelled, elapsed)
	}

	e.log.Debug("extraction finished", "key", req.Key, "task", task.ID(), "state", state, "elapsed", elapsed)
}

// publish hands u to the listener without blocking. Updates are dropped
// while the listener is behind.
func (e *Extractor) publish(u extraction.Update) {
	if e.updates == nil {
		return
	}

	select {
	case e.updates <- u:
	default:
		e.metrics.RecordDroppedUpdate()
		e.log.Debug("listener is behind, update dropped", "key", u.Key, "kind", u.Kind)
	}
}

func (e *Extractor) dispatch() {
	defer close(e.dispatchDone)

	for u := range e.updates {
		e.listener(u)
	}
}

// cacheKey identifies a result by the file's identity and the request. It
// is empty when caching is off or the file cannot be inspected.
func (e *Extractor) cacheKey(req extraction.Request) string {
	if e.cache == nil {
		return ""
	}

	abs, err := filepath.Abs(req.Path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("%s|%d|%d|%d", abs, info.Size(), info.ModTime().UnixNano(), req.ExpectedPoints)
}

func (e *Extractor) cached(cacheKey string) ([]float32, bool) {
	if cacheKey == "" {
		return nil, false
	}

	v, ok := e.cache.Get(cacheKey)
	e.metrics.RecordCacheLookup(ok)
	if !ok {
		return nil, false
	}

	return slices.Clone(v.([]float32)), true
}

func (e *Extractor) store(cacheKey string, future *extraction.Future) {
	if cacheKey == "" || !future.Resolved() {
		return
	}

	points, err := future.Wait(context.Background())
	if err != nil {
		return
	}

	e.cache.SetDefault(cacheKey, slices.Clone(points))
}
