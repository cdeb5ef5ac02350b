// SPDX-License-Identifier: EPL-2.0

package admission

import (
	"container/list"
	"log/slog"
	"sync"
)

// DefaultCapacity is the number of jobs allowed to run at once until
// Configure is called.
const DefaultCapacity = 3

// Job is a unit of work admitted by a Controller. Start must not block.
// Cancel may be called on a job that was never started.
type Job interface {
	Start()
	Cancel()
}

// Stats is a snapshot of the controller.
type Stats struct {
	Capacity int
	InUse    int
	Queued   int
}

// Observer is told about permit usage after every change. It runs with the
// controller lock held and must not call back into the controller.
type Observer func(inUse, queued int)

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithCapacity replaces the default capacity. Configure may still be
// called once afterwards.
func WithCapacity(n int) Option {
	return func(c *Controller) {
		c.capacity = n
	}
}

// Controller bounds how many jobs run at once. Jobs above capacity wait in
// a FIFO queue and are started as permits are released. A capacity of zero
// or less disables the bound: jobs start as soon as they are submitted.
type Controller struct {
	mu         sync.Mutex
	capacity   int
	configured bool
	queue      *list.List
	queued     map[Job]*list.Element
	running    map[Job]struct{}

	observer Observer
	log      *slog.Logger
}

func New(opts ...Option) *Controller {
	c := &Controller{
		capacity: DefaultCapacity,
		queue:    list.New(),
		queued:   make(map[Job]*list.Element),
		running:  make(map[Job]struct{}),
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.With("module", "admission")

	return c
}

// Configure sets the capacity. Only the first call has an effect; it
// reports whether this call was the one applied.
func (c *Controller) Configure(capacity int) bool {
	c.mu.Lock()
	if c.configured {
		c.mu.Unlock()
		c.log.Debug("capacity already configured", "capacity", capacity)
		return false
	}
	c.configured = true
	c.capacity = capacity
	ready := c.admitLocked()
	c.mu.Unlock()

	c.log.Info("capacity configured", "capacity", capacity)
	startAll(ready)

	return true
}

// Submit queues job and starts as many queued jobs as permits allow. A
// superseded job still waiting in the queue is dropped without being
// started; a running one is left to its owner to cancel.
func (c *Controller) Submit(job Job, superseded Job) {
	c.mu.Lock()
	if superseded != nil {
		if el, ok := c.queued[superseded]; ok {
			c.queue.Remove(el)
			delete(c.queued, superseded)
			c.log.Debug("superseded job dropped from queue")
		}
	}

	_, waiting := c.queued[job]
	_, running := c.running[job]
	if !waiting && !running {
		c.queued[job] = c.queue.PushBack(job)
	}

	ready := c.admitLocked()
	c.mu.Unlock()

	startAll(ready)
}

// Release gives back the permit held by job, or drops it from the queue if
// it was never admitted, then admits waiting jobs. Releasing an unknown job
// is a no-op, so every job may be released any number of times.
func (c *Controller) Release(job Job) {
	c.mu.Lock()
	switch el, ok := c.queued[job]; {
	case ok:
		c.queue.Remove(el)
		delete(c.queued, job)
	default:
		if _, ok := c.running[job]; !ok {
			c.mu.Unlock()
			return
		}
		delete(c.running, job)
	}

	ready := c.admitLocked()
	c.mu.Unlock()

	startAll(ready)
}

// Reset cancels every queued and running job and restores all permits.
func (c *Controller) Reset() {
	c.mu.Lock()
	jobs := make([]Job, 0, len(c.running)+c.queue.Len())
	for job := range c.running {
		jobs = append(jobs, job)
	}
	for el := c.queue.Front(); el != nil; el = el.Next() {
		jobs = append(jobs, el.Value.(Job))
	}

	c.queue.Init()
	clear(c.queued)
	clear(c.running)
	c.notifyLocked()
	c.mu.Unlock()

	c.log.Info("admission reset", "cancelled", len(jobs))

	for _, job := range jobs {
		job.Cancel()
	}
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Capacity: c.capacity, InUse: len(c.running), Queued: c.queue.Len()}
}

// admitLocked pops queued jobs in FIFO order while permits are free. The
// caller starts them after releasing the lock.
func (c *Controller) admitLocked() []Job {
	var ready []Job
	for c.queue.Len() > 0 && (c.capacity <= 0 || len(c.running) < c.capacity) {
		job := c.queue.Remove(c.queue.Front()).(Job)
		delete(c.queued, job)
		c.running[job] = struct{}{}
		ready = append(ready, job)
	}

	c.notifyLocked()

	return ready
}

func (c *Controller) notifyLocked() {
	if c.observer != nil {
		c.observer(len(c.running), c.queue.Len())
	}
}

func startAll(jobs []Job) {
	for _, job := range jobs {
		job.Start()
	}
}
