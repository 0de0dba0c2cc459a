package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_RunsAndDrains(t *testing.T) {
	pool := NewPool(Config{WorkerCount: 3, QueueSize: 16}, zerolog.Nop())
	pool.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(Job{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	pool.Stop()

	assert.Equal(t, int32(10), ran.Load())
	assert.ErrorIs(t, pool.Submit(Job{Name: "late", Run: func(context.Context) error { return nil }}), ErrPoolClosed)
}

func TestPool_QueueFull(t *testing.T) {
	pool := NewPool(Config{WorkerCount: 1, QueueSize: 1}, zerolog.Nop())

	noop := Job{Name: "noop", Run: func(context.Context) error { return nil }}
	require.NoError(t, pool.Submit(noop))
	assert.ErrorIs(t, pool.Submit(noop), ErrQueueFull)

	pool.Start(context.Background())
	pool.Stop()
}

func TestPool_FailuresAndPanicsDoNotStopWorkers(t *testing.T) {
	pool := NewPool(Config{WorkerCount: 1, QueueSize: 4}, zerolog.Nop())
	pool.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.Submit(Job{Name: "fail", Run: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, pool.Submit(Job{Name: "panic", Run: func(context.Context) error { panic("boom") }}))
	require.NoError(t, pool.Submit(Job{Name: "after", Run: func(context.Context) error {
		wg.Done()
		return nil
	}}))

	wg.Wait()
	pool.Stop()
}

func TestPool_TaskTimeoutAndCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(Config{WorkerCount: 1, QueueSize: 1, TaskTimeout: 20 * time.Millisecond}, zerolog.Nop())
	pool.Start(ctx)
	cancel()

	result := make(chan error, 1)
	require.NoError(t, pool.Submit(Job{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		result <- ctx.Err()
		return ctx.Err()
	}}))

	assert.ErrorIs(t, <-result, context.DeadlineExceeded)
	pool.Stop()
}
