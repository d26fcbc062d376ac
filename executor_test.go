package actorexec_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	actorexec "github.com/ChuLiYu/actor-exec"
)

// counter is the running-total actor used throughout these tests: Handle
// accumulates deltas and returns the new total, so callers can observe
// strict submission-order processing.
type counter struct{ total int }

func (c *counter) Handle(delta int) (int, error) {
	c.total += delta
	return c.total, nil
}

func newCounterExecutor() *actorexec.Executor[int, int] {
	return actorexec.NewThreadExecutor[int, int](func() actorexec.Actor[int, int] {
		return &counter{}
	})
}

func TestPostDeliversResultsInSubmissionOrder(t *testing.T) {
	exec := newCounterExecutor()
	defer exec.Shutdown(true)

	f1, err := exec.Post(5)
	require.NoError(t, err)
	f2, err := exec.Post(10)
	require.NoError(t, err)
	f3, err := exec.Post(-3)
	require.NoError(t, err)

	ctx := context.Background()
	v1, err := f1.Result(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, v1)

	v2, err := f2.Result(ctx)
	require.NoError(t, err)
	require.Equal(t, 15, v2)

	v3, err := f3.Result(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, v3)
}

func TestConcurrentPostsAllResolve(t *testing.T) {
	exec := newCounterExecutor()
	defer exec.Shutdown(true)

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	values := make([]int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := exec.Post(1)
			if err != nil {
				errs[i] = err
				return
			}
			v, err := f.Result(context.Background())
			errs[i] = err
			values[i] = v
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for i, err := range errs {
		require.NoError(t, err)
		require.False(t, seen[values[i]], "duplicate total %d", values[i])
		seen[values[i]] = true
	}
}

func TestShutdownWaitDrainsOutstandingWork(t *testing.T) {
	exec := newCounterExecutor()

	f, err := exec.Post(7)
	require.NoError(t, err)

	exec.Shutdown(true)

	v, err := f.Result(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestPostAfterShutdownIsRejected(t *testing.T) {
	exec := newCounterExecutor()
	exec.Shutdown(true)

	_, err := exec.Post(1)
	require.Error(t, err)
	require.True(t, actorexec.IsShutdown(err))
}

func TestShutdownWithoutAnyPostIsANoOp(t *testing.T) {
	exec := newCounterExecutor()
	exec.Shutdown(true) // must return promptly; no worker was ever started
	require.False(t, exec.Broken())
}

func TestCancelBeforeDispatchSkipsHandler(t *testing.T) {
	// A single-slot call queue and a deliberately slow handler: the first
	// message occupies the worker and the second fills the call-queue
	// slot, so the third cannot be dispatched until the gate opens and the
	// test can cancel it before the worker ever dequeues it.
	gate := make(chan struct{})
	var closeOnce sync.Once
	releaseGate := func() { closeOnce.Do(func() { close(gate) }) }
	var sawThird atomic.Bool

	exec := actorexec.NewThreadExecutor[int, int](func() actorexec.Actor[int, int] {
		return actorexec.ActorFunc[int, int](func(n int) (int, error) {
			if n == 1 {
				<-gate
			}
			if n == 3 {
				sawThird.Store(true)
			}
			return n, nil
		})
	})
	defer exec.Shutdown(true)
	defer releaseGate()

	first, err := exec.Post(1) // occupies the worker, blocked on gate
	require.NoError(t, err)

	second, err := exec.Post(2) // fills the single call-queue slot
	require.NoError(t, err)

	third, err := exec.Post(3)
	require.NoError(t, err)

	require.True(t, third.Cancel())

	releaseGate()

	_, err = first.Result(context.Background())
	require.NoError(t, err)

	_, err = second.Result(context.Background())
	require.NoError(t, err)

	_, err = third.Result(context.Background())
	require.True(t, actorexec.IsCancelled(err))
	require.False(t, sawThird.Load())
}

func TestHandlerErrorIsDeliveredNotFatal(t *testing.T) {
	failing := actorexec.ActorFunc[string, string](func(s string) (string, error) {
		if s == "bad" {
			return "", errShort("handler rejected input")
		}
		return s, nil
	})
	exec := actorexec.NewThreadExecutor[string, string](func() actorexec.Actor[string, string] { return failing })
	defer exec.Shutdown(true)

	bad, err := exec.Post("bad")
	require.NoError(t, err)
	_, err = bad.Result(context.Background())
	require.Error(t, err)

	good, err := exec.Post("fine")
	require.NoError(t, err)
	v, err := good.Result(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fine", v)
}

type errShort string

func (e errShort) Error() string { return string(e) }
