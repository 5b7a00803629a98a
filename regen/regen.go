// Package regen debounces requests to regenerate the benchmark data.
//
// A slider can emit a new item count every frame. Controller turns that
// stream into at most one generation per quiet period: every request cancels
// the one before it, waits out a settling interval, and only generates if no
// other count was requested in the meantime.
package regen

import (
	"context"
	"errors"
	"sync"
	"time"

	"git.sr.ht/~gioverse/listbench/async"
	"git.sr.ht/~gioverse/listbench/gen"
	"git.sr.ht/~gioverse/listbench/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultSettle is the settling interval used when none is configured.
const DefaultSettle = 500 * time.Millisecond

// ErrClosed is returned for requests made after Close.
var ErrClosed = errors.New("regen: controller closed")

// Generator produces the items for a count, abandoning the work once ctx is
// done. *gen.Generator implements it.
type Generator interface {
	GenerateContext(ctx context.Context, count int) ([]model.Item, error)
}

// Observer is told about the lifecycle of every task. Implementations must
// be safe for concurrent use.
type Observer interface {
	// Requested is called once per accepted request.
	Requested(count int)
	// Finished is called once per task with its terminal state. generation
	// is the time spent generating, zero if generation never started.
	Finished(state State, generation time.Duration)
}

// Snapshot is a delivered item list.
type Snapshot struct {
	// Task that produced the snapshot.
	Task uuid.UUID
	// Count requested by the task. Always equal to len(Items).
	Count int
	// Items is the generated data. It must not be modified.
	Items []model.Item
	// At is when the snapshot was delivered.
	At time.Time
}

// Controller owns the last requested count and the active task.
//
// The zero value is usable: it starts from a requested count of zero, waits
// DefaultSettle, generates with a gen.Generator and runs tasks on
// async.Go. Configure exported fields before the first request.
type Controller struct {
	// Initial is the requested count before any request has been made.
	Initial int
	// Settle is how long a request must go unchallenged before it is
	// generated. Defaults to DefaultSettle.
	Settle time.Duration
	// Generator builds item lists. Defaults to a zero gen.Generator.
	Generator Generator
	// Scheduler runs the settling wait and generation off the caller's
	// goroutine. Defaults to async.Go.
	Scheduler async.Scheduler
	// Observer receives lifecycle notifications. Optional.
	Observer Observer
	// Invalidator is invoked after every delivery. Use it to request a new
	// frame. Optional.
	Invalidator func()
	// Logger receives debug events for every task. The zero logger
	// discards everything.
	Logger zerolog.Logger

	init    sync.Once
	updated chan struct{}

	// mu guards everything below.
	mu     sync.Mutex
	last   int
	active *Task
	latest *Snapshot
	closed bool
}

func (c *Controller) initialize() {
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.Generator == nil {
		c.Generator = &gen.Generator{}
	}
	if c.Scheduler == nil {
		c.Scheduler = async.Go
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	c.updated = make(chan struct{}, 1)
	c.mu.Lock()
	c.last = c.Initial
	c.mu.Unlock()
}

// Request cancels the active task, records count as the latest requested
// count and starts a new task for it. It never blocks on the settling
// interval or on generation.
func (c *Controller) Request(count int) (*Task, error) {
	c.init.Do(c.initialize)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if prev := c.active; prev != nil {
		prev.Cancel()
		c.Logger.Debug().
			Str("task", prev.ID.String()).
			Int("count", prev.Count).
			Msg("superseded")
	}
	c.last = count
	t := newTask(count)
	c.active = t
	c.Observer.Requested(count)
	c.Logger.Debug().
		Str("task", t.ID.String()).
		Int("count", count).
		Dur("settle", c.Settle).
		Msg("regeneration requested")
	go func() {
		err := c.Scheduler.Schedule(t.ctx, func(ctx context.Context) {
			c.run(ctx, t)
		})
		if err != nil {
			c.finish(t, Cancelled, nil, 0)
		}
	}()
	return t, nil
}

// RequestWait is Request followed by waiting for the task to finish. The
// result reports whether items were delivered; a task that was cancelled or
// went stale is not an error.
func (c *Controller) RequestWait(ctx context.Context, count int) (Result, error) {
	t, err := c.Request(count)
	if err != nil {
		return Result{Count: count, State: Cancelled}, err
	}
	return t.Wait(ctx)
}

// LastRequested returns the most recently requested count.
func (c *Controller) LastRequested() int {
	c.init.Do(c.initialize)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Active returns the most recently started task, which may have finished.
func (c *Controller) Active() *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Latest returns the most recently delivered snapshot.
func (c *Controller) Latest() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return Snapshot{}, false
	}
	return *c.latest, true
}

// Updated returns a channel that reports that a new snapshot was delivered.
// Integrate this into the gio event loop to invalidate the window.
//
//	case <-ctrl.Updated():
//		w.Invalidate()
func (c *Controller) Updated() <-chan struct{} {
	c.init.Do(c.initialize)
	return c.updated
}

// Close cancels the active task and rejects further requests.
func (c *Controller) Close() {
	c.init.Do(c.initialize)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.active != nil {
		c.active.Cancel()
	}
	c.Logger.Info().Msg("regeneration controller closed")
}

// run is the body of a task, executed on the scheduler.
func (c *Controller) run(ctx context.Context, t *Task) {
	timer := time.NewTimer(c.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		c.finish(t, Cancelled, nil, 0)
		return
	case <-timer.C:
	}
	if ctx.Err() != nil {
		c.finish(t, Cancelled, nil, 0)
		return
	}
	c.mu.Lock()
	stale := c.last != t.Count
	c.mu.Unlock()
	if stale {
		c.finish(t, Stale, nil, 0)
		return
	}

	t.setState(Generating)
	start := time.Now()
	items, err := c.Generator.GenerateContext(ctx, t.Count)
	elapsed := time.Since(start)
	if err != nil {
		c.finish(t, Cancelled, nil, elapsed)
		return
	}
	c.finish(t, Delivered, items, elapsed)
}

// finish moves t into its terminal state. Delivery happens under the
// controller lock, so a task cancelled by Request can never publish. Waiters
// are released only after observers and the invalidator have run.
func (c *Controller) finish(t *Task, s State, items []model.Item, generation time.Duration) {
	if s == Delivered {
		c.mu.Lock()
		if t.ctx.Err() != nil {
			c.mu.Unlock()
			c.finish(t, Cancelled, nil, generation)
			return
		}
		if !t.finish(Delivered, items) {
			c.mu.Unlock()
			return
		}
		c.latest = &Snapshot{
			Task:  t.ID,
			Count: t.Count,
			Items: items,
			At:    time.Now(),
		}
		c.mu.Unlock()
	} else if !t.finish(s, nil) {
		return
	}
	defer t.close()

	c.Observer.Finished(s, generation)
	ev := c.Logger.Debug()
	if s == Delivered {
		ev = c.Logger.Info()
	}
	ev.Str("task", t.ID.String()).
		Int("count", t.Count).
		Str("state", s.String()).
		Dur("generation", generation).
		Msg("regeneration finished")

	if s != Delivered {
		return
	}
	select {
	case c.updated <- struct{}{}:
	default:
	}
	if c.Invalidator != nil {
		c.Invalidator()
	}
}

type nopObserver struct{}

func (nopObserver) Requested(int)                {}
func (nopObserver) Finished(State, time.Duration) {}
