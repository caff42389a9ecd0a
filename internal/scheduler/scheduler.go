// Package scheduler runs the background jobs: expiring abandoned pending
// bookings and draining the notification outbox.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"smartpark/internal/usecase/outbox"
)

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(logger *slog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{jobs: jobs, logger: logger}
}

// Start launches one ticker loop per job. The loops stop when ctx is done or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Warn("job disabled, non-positive interval", "job", job.Name)
			continue
		}
		s.wg.Add(1)
		go func(job Job) {
			defer s.wg.Done()
			s.loop(ctx, job)
		}(job)
	}
}

// Stop cancels the loops and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.Info("scheduler job started", "job", job.Name, "interval", job.Interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler job stopped", "job", job.Name)
			return
		case <-ticker.C:
			s.tick(ctx, job)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler job panicked", "job", job.Name, "panic", r)
		}
	}()
	if err := job.Run(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("scheduler job failed", "job", job.Name, "error", err)
	}
}

type maintenance interface {
	ExpirePending(ctx context.Context) (int, error)
	PurgeIdempotencyKeys(ctx context.Context) (int64, error)
}

// SweepJob cancels expired pending bookings, then drops expired idempotency keys.
func SweepJob(m maintenance, interval time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:     "sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			expired, err := m.ExpirePending(ctx)
			if err != nil {
				return err
			}
			purged, err := m.PurgeIdempotencyKeys(ctx)
			if err != nil {
				return err
			}
			if expired > 0 || purged > 0 {
				logger.Info("sweep finished", "expired_bookings", expired, "purged_keys", purged)
			}
			return nil
		},
	}
}

type dispatcher interface {
	DispatchDue(ctx context.Context) (outbox.DispatchStats, error)
}

// DispatchJob delivers due outbox jobs. A full batch is followed immediately
// by another one so a backlog drains faster than one batch per tick.
func DispatchJob(d dispatcher, interval time.Duration, batchSize int, logger *slog.Logger) Job {
	return Job{
		Name:     "dispatch",
		Interval: interval,
		Run: func(ctx context.Context) error {
			for {
				stats, err := d.DispatchDue(ctx)
				if err != nil {
					return err
				}
				if stats.Claimed > 0 {
					logger.Debug("outbox batch dispatched",
						"claimed", stats.Claimed, "sent", stats.Sent, "retried", stats.Retried, "failed", stats.Failed)
				}
				if batchSize <= 0 || stats.Claimed < batchSize || ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}
