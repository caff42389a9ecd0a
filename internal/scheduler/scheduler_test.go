//go:build unit

package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"smartpark/internal/scheduler"
	"smartpark/internal/usecase/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMaintenance struct {
	expired   atomic.Int32
	purged    atomic.Int32
	expireErr error
}

func (f *fakeMaintenance) ExpirePending(context.Context) (int, error) {
	f.expired.Add(1)
	return 2, f.expireErr
}

func (f *fakeMaintenance) PurgeIdempotencyKeys(context.Context) (int64, error) {
	f.purged.Add(1)
	return 1, nil
}

type fakeDispatcher struct {
	batches []outbox.DispatchStats
	calls   int
}

func (f *fakeDispatcher) DispatchDue(context.Context) (outbox.DispatchStats, error) {
	if f.calls >= len(f.batches) {
		f.calls++
		return outbox.DispatchStats{}, nil
	}
	s := f.batches[f.calls]
	f.calls++
	return s, nil
}

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	s := scheduler.New(discardLogger(), scheduler.Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := scheduler.New(discardLogger(), scheduler.Job{
		Name:     "idle",
		Interval: time.Hour,
		Run:      func(context.Context) error { return nil },
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestScheduler_SurvivesFailingAndPanickingJobs(t *testing.T) {
	var runs atomic.Int32
	s := scheduler.New(discardLogger(), scheduler.Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			n := runs.Add(1)
			if n == 1 {
				panic("boom")
			}
			return errors.New("db error")
		},
	})

	s.Start(context.Background())
	defer s.Stop()
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestSweepJob(t *testing.T) {
	t.Run("runs expiry then purge", func(t *testing.T) {
		m := &fakeMaintenance{}
		job := scheduler.SweepJob(m, time.Minute, discardLogger())

		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, int32(1), m.expired.Load())
		assert.Equal(t, int32(1), m.purged.Load())
	})

	t.Run("expiry error skips purge", func(t *testing.T) {
		m := &fakeMaintenance{expireErr: errors.New("db error")}
		job := scheduler.SweepJob(m, time.Minute, discardLogger())

		require.Error(t, job.Run(context.Background()))
		assert.Equal(t, int32(0), m.purged.Load())
	})
}

func TestDispatchJob_DrainsFullBatches(t *testing.T) {
	d := &fakeDispatcher{batches: []outbox.DispatchStats{
		{Claimed: 2, Sent: 2},
		{Claimed: 2, Sent: 1, Retried: 1},
		{Claimed: 1, Sent: 1},
	}}
	job := scheduler.DispatchJob(d, time.Second, 2, discardLogger())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 3, d.calls)
}
