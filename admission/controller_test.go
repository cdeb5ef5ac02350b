// SPDX-License-Identifier: EPL-2.0

package admission

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeJob struct {
	name string
	rec  *recorder
}

func (j *fakeJob) Start()  { j.rec.add("start " + j.name) }
func (j *fakeJob) Cancel() { j.rec.add("cancel " + j.name) }

func jobs(rec *recorder, names ...string) []*fakeJob {
	out := make([]*fakeJob, len(names))
	for i, n := range names {
		out[i] = &fakeJob{name: n, rec: rec}
	}
	return out
}

func TestController_FIFO(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New()
	require.True(t, c.Configure(1))

	js := jobs(rec, "t1", "t2", "t3")
	for _, j := range js {
		c.Submit(j, nil)
	}

	assert.Equal(t, []string{"start t1"}, rec.list())
	assert.Equal(t, Stats{Capacity: 1, InUse: 1, Queued: 2}, c.Stats())

	c.Release(js[0])
	assert.Equal(t, []string{"start t1", "start t2"}, rec.list())

	c.Release(js[1])
	assert.Equal(t, []string{"start t1", "start t2", "start t3"}, rec.list())

	c.Release(js[2])
	assert.Equal(t, Stats{Capacity: 1}, c.Stats())
}

func TestController_DefaultCapacity(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New()

	for _, j := range jobs(rec, "a", "b", "c", "d") {
		c.Submit(j, nil)
	}

	assert.Equal(t, []string{"start a", "start b", "start c"}, rec.list())
	assert.Equal(t, Stats{Capacity: DefaultCapacity, InUse: 3, Queued: 1}, c.Stats())
}

func TestController_ConfigureOnce(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New(WithCapacity(1))

	js := jobs(rec, "a", "b", "c")
	for _, j := range js {
		c.Submit(j, nil)
	}
	require.Equal(t, []string{"start a"}, rec.list())

	// raising the capacity admits waiting jobs
	assert.True(t, c.Configure(2))
	assert.Equal(t, []string{"start a", "start b"}, rec.list())

	assert.False(t, c.Configure(10))
	assert.Equal(t, 2, c.Stats().Capacity)
}

func TestController_Bypass(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		rec := &recorder{}
		c := New()
		require.True(t, c.Configure(capacity))

		for i := range 10 {
			c.Submit(&fakeJob{name: fmt.Sprint(i), rec: rec}, nil)
		}

		assert.Len(t, rec.list(), 10)
		assert.Zero(t, c.Stats().Queued)
	}
}

func TestController_SupersedeQueued(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New()
	require.True(t, c.Configure(1))

	js := jobs(rec, "busy", "old", "new")
	c.Submit(js[0], nil)
	c.Submit(js[1], nil)
	c.Submit(js[2], js[1])

	assert.Equal(t, 1, c.Stats().Queued)

	c.Release(js[0])
	c.Release(js[2])

	assert.Equal(t, []string{"start busy", "start new"}, rec.list())
	assert.Equal(t, Stats{Capacity: 1}, c.Stats())
}

func TestController_SupersedeRunning(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New()
	require.True(t, c.Configure(1))

	js := jobs(rec, "old", "new")
	c.Submit(js[0], nil)
	c.Submit(js[1], js[0])

	// the running job keeps its permit until released
	assert.Equal(t, []string{"start old"}, rec.list())

	c.Release(js[0])
	assert.Equal(t, []string{"start old", "start new"}, rec.list())
}

func TestController_ReleaseIdempotent(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New()
	require.True(t, c.Configure(2))

	js := jobs(rec, "a", "b", "c", "d")
	for _, j := range js {
		c.Submit(j, nil)
	}

	c.Release(js[0])
	c.Release(js[0])
	c.Release(js[0])

	// one permit came back: only c was admitted
	assert.Equal(t, []string{"start a", "start b", "start c"}, rec.list())
	assert.Equal(t, Stats{Capacity: 2, InUse: 2, Queued: 1}, c.Stats())

	// releasing a queued job removes it without starting it
	c.Release(js[3])
	assert.Equal(t, Stats{Capacity: 2, InUse: 2, Queued: 0}, c.Stats())

	c.Release(&fakeJob{name: "unknown", rec: rec})
	assert.Equal(t, Stats{Capacity: 2, InUse: 2, Queued: 0}, c.Stats())
}

func TestController_DuplicateSubmit(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := New()
	require.True(t, c.Configure(1))

	js := jobs(rec, "a", "b")
	c.Submit(js[0], nil)
	c.Submit(js[0], nil)
	c.Submit(js[1], nil)
	c.Submit(js[1], nil)

	assert.Equal(t, Stats{Capacity: 1, InUse: 1, Queued: 1}, c.Stats())
	assert.Equal(t, []string{"start a"}, rec.list())
}

func TestController_Reset(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	var observed [][2]int
	c := New(WithObserver(func(inUse, queued int) {
		observed = append(observed, [2]int{inUse, queued})
	}))
	require.True(t, c.Configure(1))

	js := jobs(rec, "a", "b", "c")
	for _, j := range js {
		c.Submit(j, nil)
	}

	c.Reset()

	assert.Equal(t, []string{"start a", "cancel a", "cancel b", "cancel c"}, rec.list())
	assert.Equal(t, Stats{Capacity: 1}, c.Stats())
	assert.Equal(t, [2]int{0, 0}, observed[len(observed)-1])

	// releases after a reset do not inflate the permits
	for _, j := range js {
		c.Release(j)
	}

	next := jobs(rec, "d", "e")
	c.Submit(next[0], nil)
	c.Submit(next[1], nil)
	assert.Equal(t, Stats{Capacity: 1, InUse: 1, Queued: 1}, c.Stats())
}

func TestController_Observer(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	var observed [][2]int
	c := New(WithCapacity(1), WithObserver(func(inUse, queued int) {
		observed = append(observed, [2]int{inUse, queued})
	}))

	js := jobs(rec, "a", "b")
	c.Submit(js[0], nil)
	c.Submit(js[1], nil)
	c.Release(js[0])
	c.Release(js[1])

	assert.Equal(t, [][2]int{{1, 0}, {1, 1}, {1, 0}, {0, 0}}, observed)
}

type workJob struct {
	c       *Controller
	wg      *sync.WaitGroup
	active  *atomic.Int32
	maxSeen *atomic.Int32
}

func (j *workJob) Start() {
	go func() {
		n := j.active.Add(1)
		for {
			old := j.maxSeen.Load()
			if n <= old || j.maxSeen.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		j.active.Add(-1)
		j.c.Release(j)
		j.wg.Done()
	}()
}

func (j *workJob) Cancel() {}

func TestController_ConcurrentPermits(t *testing.T) {
	t.Parallel()

	const (
		capacity = 3
		total    = 60
	)

	var (
		wg              sync.WaitGroup
		active, maxSeen atomic.Int32
		badObservation  atomic.Bool
	)

	c := New(WithObserver(func(inUse, _ int) {
		if inUse > capacity {
			badObservation.Store(true)
		}
	}))
	require.True(t, c.Configure(capacity))

	wg.Add(total)
	var submitters sync.WaitGroup
	for range total {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			c.Submit(&workJob{c: c, wg: &wg, active: &active, maxSeen: &maxSeen}, nil)
		}()
	}

	submitters.Wait()
	wg.Wait()

	assert.LessOrEqual(t, maxSeen.Load(), int32(capacity))
	assert.False(t, badObservation.Load())
	assert.Equal(t, Stats{Capacity: capacity}, c.Stats())
}
