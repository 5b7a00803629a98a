package regen

import (
	"context"
	"sync"

	"git.sr.ht/~gioverse/listbench/model"
	"github.com/google/uuid"
)

// State that a regeneration Task can be in.
type State byte

const (
	// Pending tasks are waiting out the settling interval.
	Pending State = iota
	// Generating tasks survived the settling interval and are building
	// their item list.
	Generating
	// Cancelled tasks were superseded by a newer request (or the controller
	// was closed) and produced nothing.
	Cancelled
	// Stale tasks waited out the settling interval only to find that a
	// different count had been requested in the meantime.
	Stale
	// Delivered tasks generated their items and published them.
	Delivered
)

// String returns a lower case name for the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Generating:
		return "generating"
	case Cancelled:
		return "cancelled"
	case Stale:
		return "stale"
	case Delivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == Cancelled || s == Stale || s == Delivered
}

// Result is the outcome of a finished task.
type Result struct {
	// Task identifies the task that produced the result.
	Task uuid.UUID
	// Count is the number of items the task was asked for.
	Count int
	// State is the terminal state of the task.
	State State
	// Items holds the generated items. Nil unless State is Delivered.
	Items []model.Item
}

// Delivered reports whether the result carries items.
func (r Result) Delivered() bool {
	return r.State == Delivered
}

// Task is one in-flight regeneration for a specific count. Tasks are created
// by Controller.Request.
type Task struct {
	// ID uniquely identifies the task in logs.
	ID uuid.UUID
	// Count is the requested number of items, captured at request time.
	Count int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
	items []model.Item
}

func newTask(count int) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	return &Task{
		ID:     uuid.New(),
		Count:  count,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel asks the task to stop. The task observes the request at its next
// suspension point; cancelling a finished task is a no-op.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// State reports the current state of the task.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the outcome of the task. Until the task is done the result
// reports the current, non-terminal state.
func (t *Task) Result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Result{
		Task:  t.ID,
		Count: t.Count,
		State: t.state,
		Items: t.items,
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.Result(), nil
	case <-ctx.Done():
		return t.Result(), ctx.Err()
	}
}

// setState moves a task that is still running into s.
func (t *Task) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Terminal() {
		t.state = s
	}
}

// finish moves the task into the terminal state s. Only the first call has
// any effect; it reports whether it was that call. The caller must call
// close once it has finished reporting the outcome.
func (t *Task) finish(s State, items []model.Item) bool {
	t.mu.Lock()
	if t.state.Terminal() {
		t.mu.Unlock()
		return false
	}
	t.state = s
	if s == Delivered {
		t.items = items
	}
	t.mu.Unlock()
	t.cancel()
	return true
}

// close releases waiters.
func (t *Task) close() {
	close(t.done)
}
