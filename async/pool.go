// Package async provides schedulers that run blocking work off the goroutine
// driving the user interface.
package async

import (
	"context"
	"runtime"
	"sync"
)

// Work is a unit of blocking work. The context is the one handed to
// Schedule; work should return promptly once it is done.
type Work func(ctx context.Context)

// Scheduler schedules work according to some strategy.
// Implementations can implement the best way to distribute work for a given
// application.
type Scheduler interface {
	// Schedule a piece of work. This method is allowed to block until a
	// worker accepts the work, but must give up and return ctx.Err() once
	// the context is done. Work that has been accepted always runs.
	Schedule(ctx context.Context, work Work) error
}

// SchedulerFunc adapts an ordinary function into a Scheduler.
type SchedulerFunc func(ctx context.Context, work Work) error

// Schedule calls f(ctx, work).
func (f SchedulerFunc) Schedule(ctx context.Context, work Work) error {
	return f(ctx, work)
}

// Go is a Scheduler that runs every unit of work on a fresh goroutine.
// It never blocks.
var Go Scheduler = SchedulerFunc(func(ctx context.Context, work Work) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	go run(ctx, work)
	return nil
})

// FixedWorkerPool implements a simple fixed-size worker pool that lets go
// runtime schedule work atop some number of goroutines.
//
// This pool will minimize goroutine latency at the cost of maintaining the
// configured number of goroutines throughout the lifetime of the pool.
type FixedWorkerPool struct {
	// Workers specifies the number of concurrent workers in this pool.
	// Defaults to NumCPU.
	Workers int
	// queue of work. Unbuffered so it will block if worker pool is at capacity.
	queue chan job
	// once time initialization.
	sync.Once
}

// job pairs work with the context it was scheduled under.
type job struct {
	ctx  context.Context
	work Work
}

// Schedule work to be executed by the available workers. This is a blocking
// call if all workers are busy, until ctx is done.
func (p *FixedWorkerPool) Schedule(ctx context.Context, work Work) error {
	p.Once.Do(func() {
		p.queue = make(chan job)
		if p.Workers <= 0 {
			p.Workers = runtime.NumCPU()
		}
		for ii := 0; ii < p.Workers; ii++ {
			go func() {
				for j := range p.queue {
					run(j.ctx, j.work)
				}
			}()
		}
	})
	return enqueue(ctx, p.queue, work)
}

// DynamicWorkerPool implements a simple dynamic-sized worker pool that spins up
// a new worker per unit of work, until the maximum number of workers has been
// reached.
//
// This pool will minimize idle memory as goroutines will die off once complete,
// but will incur the latency cost, such that it is, of spinning up goroutines
// on-the-fly.
type DynamicWorkerPool struct {
	// Workers specifies the maximum allowed number of concurrent workers in
	// this pool. Defaults to NumCPU.
	Workers int64
	// count is a semaphore queue that limits the number of workers at any
	// given time. The size of the buffer for the channel provides the limit.
	count chan struct{}
	// queue of work. Unbuffered so it will block if worker pool is at capacity.
	queue chan job
	// once time initialization.
	sync.Once
}

// Schedule work to be executed by the available workers. This is a blocking
// call if all workers are busy, until ctx is done.
//
// Workers are limited by a buffer of semaphores.
// Each worker holds a semaphore for the duration of it's life and returns it
// before exiting.
func (p *DynamicWorkerPool) Schedule(ctx context.Context, work Work) error {
	p.Once.Do(func() {
		if p.Workers <= 0 {
			p.Workers = int64(runtime.NumCPU())
		}
		p.queue = make(chan job)
		p.count = make(chan struct{}, p.Workers)
		for ii := 0; ii < int(p.Workers); ii++ {
			p.count <- struct{}{}
		}
		go func() {
			for j := range p.queue {
				j := j
				sem := <-p.count
				go func() {
					run(j.ctx, j.work)
					p.count <- sem
				}()
			}
		}()
	})
	return enqueue(ctx, p.queue, work)
}

func enqueue(ctx context.Context, queue chan<- job, work Work) error {
	if work == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case queue <- job{ctx: ctx, work: work}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func run(ctx context.Context, work Work) {
	if work != nil {
		work(ctx)
	}
}
