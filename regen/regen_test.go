package regen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"git.sr.ht/~gioverse/listbench/async"
	"git.sr.ht/~gioverse/listbench/gen"
	"git.sr.ht/~gioverse/listbench/model"
	"github.com/google/go-cmp/cmp"
)

const (
	testSettle  = 50 * time.Millisecond
	testTimeout = 2 * time.Second
)

// countingObserver records every lifecycle notification.
type countingObserver struct {
	sync.Mutex
	requested []int
	finished  map[State]int
}

func (o *countingObserver) Requested(count int) {
	o.Lock()
	defer o.Unlock()
	o.requested = append(o.requested, count)
}

func (o *countingObserver) Finished(s State, _ time.Duration) {
	o.Lock()
	defer o.Unlock()
	if o.finished == nil {
		o.finished = make(map[State]int)
	}
	o.finished[s]++
}

func (o *countingObserver) count(s State) int {
	o.Lock()
	defer o.Unlock()
	return o.finished[s]
}

func newTestController(settle time.Duration) (*Controller, *countingObserver) {
	obs := &countingObserver{}
	return &Controller{
		Initial:   10,
		Settle:    settle,
		Generator: gen.New(1),
		Observer:  obs,
	}, obs
}

func waitResult(t *testing.T, task *Task) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	res, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("task for %d did not finish: %v", task.Count, err)
	}
	return res
}

func ids(items []model.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSettleDelivers(t *testing.T) {
	c, obs := newTestController(testSettle)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.RequestWait(ctx, 25)
	if err != nil {
		t.Fatalf("RequestWait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < testSettle {
		t.Errorf("delivered after %v, before the settling interval %v", elapsed, testSettle)
	}
	if !res.Delivered() {
		t.Fatalf("expected delivery, got %v", res.State)
	}
	if diff := cmp.Diff(seq(25), ids(res.Items)); diff != "" {
		t.Errorf("unexpected ids (-want +got):\n%s", diff)
	}
	snap, ok := c.Latest()
	if !ok {
		t.Fatalf("expected a snapshot after delivery")
	}
	if snap.Task != res.Task || snap.Count != 25 || len(snap.Items) != 25 {
		t.Errorf("snapshot %v does not match result %v", snap.Count, res.Count)
	}
	if got := obs.count(Delivered); got != 1 {
		t.Errorf("expected 1 delivery, got %d", got)
	}
}

// TestScenario drives the controller with the production settling interval.
func TestScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("uses the real settling interval")
	}
	c, obs := newTestController(0)

	if _, err := c.Request(10); err != nil {
		t.Fatalf("Request: %v", err)
	}
	time.Sleep(600 * time.Millisecond)
	snap, ok := c.Latest()
	if !ok || len(snap.Items) != 10 {
		t.Fatalf("expected a delivered list of 10 items, got %d (ok=%v)", len(snap.Items), ok)
	}

	big, err := c.Request(5000)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	small, err := c.Request(20)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	time.Sleep(600 * time.Millisecond)

	snap, ok = c.Latest()
	if !ok || len(snap.Items) != 20 {
		t.Fatalf("expected a delivered list of 20 items, got %d (ok=%v)", len(snap.Items), ok)
	}
	if s := waitResult(t, big).State; s != Cancelled {
		t.Errorf("5000 request finished %v, want cancelled", s)
	}
	if s := waitResult(t, small).State; s != Delivered {
		t.Errorf("20 request finished %v, want delivered", s)
	}
	if got := obs.count(Delivered); got != 2 {
		t.Errorf("expected exactly 2 deliveries, got %d", got)
	}
}

func TestDebounce(t *testing.T) {
	c, obs := newTestController(testSettle)
	var tasks []*Task
	for n := 100; n <= 2000; n += 100 {
		task, err := c.Request(n)
		if err != nil {
			t.Fatalf("Request(%d): %v", n, err)
		}
		tasks = append(tasks, task)
	}
	for _, task := range tasks[:len(tasks)-1] {
		if res := waitResult(t, task); res.State != Cancelled || res.Items != nil {
			t.Errorf("request for %d finished %v with %d items, want cancelled", task.Count, res.State, len(res.Items))
		}
	}
	last := waitResult(t, tasks[len(tasks)-1])
	if !last.Delivered() || len(last.Items) != 2000 {
		t.Fatalf("last request finished %v with %d items", last.State, len(last.Items))
	}
	if got := obs.count(Delivered); got != 1 {
		t.Errorf("expected 1 delivery, got %d", got)
	}
	if got := obs.count(Cancelled); got != len(tasks)-1 {
		t.Errorf("expected %d cancellations, got %d", len(tasks)-1, got)
	}
	if got := c.LastRequested(); got != 2000 {
		t.Errorf("LastRequested = %d, want 2000", got)
	}
}

// TestStale covers a task whose count was superseded without the task being
// cancelled: it must wait out the settling interval and then discard.
func TestStale(t *testing.T) {
	c, obs := newTestController(testSettle)
	task, err := c.Request(30)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	c.mu.Lock()
	c.last = 31
	c.mu.Unlock()

	res := waitResult(t, task)
	if res.State != Stale || res.Items != nil {
		t.Fatalf("expected stale with no items, got %v with %d items", res.State, len(res.Items))
	}
	if _, ok := c.Latest(); ok {
		t.Errorf("stale task must not publish a snapshot")
	}
	if got := obs.count(Stale); got != 1 {
		t.Errorf("expected 1 stale task, got %d", got)
	}
}

// blockingGenerator blocks generation of block until release is closed,
// ignoring cancellation.
type blockingGenerator struct {
	block   int
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) GenerateContext(ctx context.Context, count int) ([]model.Item, error) {
	if count == g.block {
		close(g.entered)
		<-g.release
	}
	return gen.New(1).Generate(count), nil
}

func TestCancelDuringGeneration(t *testing.T) {
	g := &blockingGenerator{
		block:   10,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c, obs := newTestController(testSettle)
	c.Generator = g

	first, err := c.Request(10)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	select {
	case <-g.entered:
	case <-time.After(testTimeout):
		t.Fatalf("generation never started")
	}
	if s := first.State(); s != Generating {
		t.Errorf("expected generating, got %v", s)
	}
	second, err := c.Request(20)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	close(g.release)

	if res := waitResult(t, first); res.State != Cancelled || res.Items != nil {
		t.Errorf("superseded generation finished %v with %d items", res.State, len(res.Items))
	}
	if res := waitResult(t, second); !res.Delivered() || len(res.Items) != 20 {
		t.Errorf("second request finished %v with %d items", res.State, len(res.Items))
	}
	snap, _ := c.Latest()
	if snap.Count != 20 {
		t.Errorf("latest snapshot has count %d, want 20", snap.Count)
	}
	if got := obs.count(Delivered); got != 1 {
		t.Errorf("expected 1 delivery, got %d", got)
	}
}

func TestCancelFinishedTaskIsNoop(t *testing.T) {
	c, _ := newTestController(testSettle)
	task, err := c.Request(12)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	waitResult(t, task)
	task.Cancel()
	if s := task.State(); s != Delivered {
		t.Errorf("cancelling a delivered task changed its state to %v", s)
	}
	if res := task.Result(); len(res.Items) != 12 {
		t.Errorf("cancelling a delivered task dropped its items")
	}
}

func TestClose(t *testing.T) {
	c, _ := newTestController(time.Hour)
	task, err := c.Request(10)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	c.Close()
	if res := waitResult(t, task); res.State != Cancelled {
		t.Errorf("active task finished %v after close, want cancelled", res.State)
	}
	if _, err := c.Request(11); !errors.Is(err, ErrClosed) {
		t.Errorf("Request after close returned %v, want ErrClosed", err)
	}
	if _, err := c.RequestWait(context.Background(), 11); !errors.Is(err, ErrClosed) {
		t.Errorf("RequestWait after close returned %v, want ErrClosed", err)
	}
	c.Close()
}

func TestUpdatedAndInvalidator(t *testing.T) {
	c, _ := newTestController(testSettle)
	var (
		mu          sync.Mutex
		invalidated int
	)
	c.Invalidator = func() {
		mu.Lock()
		invalidated++
		mu.Unlock()
	}
	task, err := c.Request(15)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	waitResult(t, task)
	select {
	case <-c.Updated():
	default:
		t.Fatalf("no update after delivery")
	}
	select {
	case <-c.Updated():
		t.Errorf("a single delivery produced two updates")
	default:
	}
	mu.Lock()
	defer mu.Unlock()
	if invalidated != 1 {
		t.Errorf("expected 1 invalidation, got %d", invalidated)
	}
}

func TestConcurrentRequests(t *testing.T) {
	c, _ := newTestController(testSettle)
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		tasks []*Task
	)
	for ii := 0; ii < 16; ii++ {
		ii := ii
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := c.Request(100 + ii)
			if err != nil {
				t.Errorf("Request: %v", err)
				return
			}
			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
		}()
	}
	wg.Wait()
	final, err := c.Request(77)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	for _, task := range tasks {
		if res := waitResult(t, task); res.State != Cancelled {
			t.Errorf("concurrent request for %d finished %v, want cancelled", task.Count, res.State)
		}
	}
	if res := waitResult(t, final); !res.Delivered() {
		t.Fatalf("final request finished %v", res.State)
	}
	if snap, _ := c.Latest(); snap.Count != 77 || c.Active() != final {
		t.Errorf("controller does not reflect the final request: count %d", snap.Count)
	}
}

func TestWaitContext(t *testing.T) {
	c, _ := newTestController(time.Hour)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res, err := c.RequestWait(ctx, 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if res.State != Pending {
		t.Errorf("expected the task to still be pending, got %v", res.State)
	}
}

func TestSchedulerRejection(t *testing.T) {
	c, obs := newTestController(testSettle)
	c.Scheduler = async.SchedulerFunc(func(ctx context.Context, work async.Work) error {
		return context.Canceled
	})
	task, err := c.Request(10)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if res := waitResult(t, task); res.State != Cancelled {
		t.Errorf("rejected task finished %v, want cancelled", res.State)
	}
	if got := obs.count(Cancelled); got != 1 {
		t.Errorf("expected 1 cancellation, got %d", got)
	}
}

func TestFixedWorkerPool(t *testing.T) {
	c, _ := newTestController(testSettle)
	c.Scheduler = &async.FixedWorkerPool{Workers: 1}
	first, err := c.Request(10)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	second, err := c.Request(40)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if res := waitResult(t, first); res.State != Cancelled {
		t.Errorf("first task finished %v, want cancelled", res.State)
	}
	if res := waitResult(t, second); !res.Delivered() || len(res.Items) != 40 {
		t.Errorf("second task finished %v with %d items", res.State, len(res.Items))
	}
}

func TestZeroValue(t *testing.T) {
	var c Controller
	if got := c.LastRequested(); got != 0 {
		t.Errorf("zero controller LastRequested = %d", got)
	}
	c.Close()
}

func TestState(t *testing.T) {
	type testcase struct {
		state    State
		name     string
		terminal bool
	}
	for _, tc := range []testcase{
		{Pending, "pending", false},
		{Generating, "generating", false},
		{Cancelled, "cancelled", true},
		{Stale, "stale", true},
		{Delivered, "delivered", true},
		{State(99), "unknown", false},
	} {
		if got := tc.state.String(); got != tc.name {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.name)
		}
		if got := tc.state.Terminal(); got != tc.terminal {
			t.Errorf("State(%d).Terminal() = %v, want %v", tc.state, got, tc.terminal)
		}
	}
}
