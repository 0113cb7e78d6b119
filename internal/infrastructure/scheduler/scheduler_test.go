package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobOnInterval(t *testing.T) {
	s := NewScheduler(nil)

	var runs int64
	s.RegisterInterval("tick", 20*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 3
	}, time.Second, 5*time.Millisecond, "job should run immediately and then on its interval")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	stopped := atomic.LoadInt64(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt64(&runs), "no runs after Stop")
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s := NewScheduler(nil)

	var runs int64
	s.RegisterInterval("flaky", 10*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return errors.New("boom")
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 2
	}, time.Second, 5*time.Millisecond, "failures must not stop the ticker")
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	s := NewScheduler(nil)

	var runs int64
	s.RegisterInterval("once", time.Hour, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.EqualValues(t, 1, atomic.LoadInt64(&runs), "double Start must not duplicate the job")
}
