package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/shared"
)

const maxBackoff = 10 * time.Minute

type DispatchConfig struct {
	BatchSize   int
	MaxAttempts int
	// VisibilityTimeout is how long a claimed job may stay in processing
	// before another dispatcher takes it over.
	VisibilityTimeout time.Duration
	BaseBackoff       time.Duration
}

type DispatchStats struct {
	Claimed int
	Sent    int
	Retried int
	Failed  int
}

type Dispatcher struct {
	uow       shared.UnitOfWork
	mailer    Mailer
	publisher EventPublisher
	clock     clock.Clock
	cfg       DispatchConfig
}

func NewDispatcher(uow shared.UnitOfWork, mailer Mailer, publisher EventPublisher, clk clock.Clock, cfg DispatchConfig) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 10 * time.Second
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = 5 * time.Minute
	}
	return &Dispatcher{uow: uow, mailer: mailer, publisher: publisher, clock: clk, cfg: cfg}
}

// DispatchDue claims one batch of due jobs and delivers them. Delivery errors
// are recorded on the job and do not fail the batch.
func (d *Dispatcher) DispatchDue(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats
	now := d.clock.Now()

	var jobs []shared.NotificationJob
	err := d.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		jobs, err = tx.Notifications().ClaimDue(ctx, tx.DB(), now, now.Add(-d.cfg.VisibilityTimeout), d.cfg.BatchSize)
		return err
	})
	if err != nil {
		return stats, errs.Wrap(err, "failed to claim notification jobs")
	}
	stats.Claimed = len(jobs)

	for _, job := range jobs {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		deliverErr := d.deliver(ctx, job)
		if err := d.settle(ctx, job, deliverErr, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (d *Dispatcher) deliver(ctx context.Context, job shared.NotificationJob) error {
	switch job.Kind {
	case shared.JobKindEmail:
		var msg EmailMessage
		if err := json.Unmarshal(job.Payload, &msg); err != nil {
			return errs.Wrap(err, "invalid email payload")
		}
		return d.mailer.Send(ctx, msg)
	case shared.JobKindEvent:
		var evt BookingEvent
		if err := json.Unmarshal(job.Payload, &evt); err != nil {
			return errs.Wrap(err, "invalid event payload")
		}
		return d.publisher.Publish(ctx, evt)
	default:
		return errs.New("unknown job kind: " + string(job.Kind))
	}
}

func (d *Dispatcher) settle(ctx context.Context, job shared.NotificationJob, deliverErr error, stats *DispatchStats) error {
	now := d.clock.Now()
	return d.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Notifications()
		if deliverErr == nil {
			stats.Sent++
			return repo.MarkDone(ctx, tx.DB(), job.ID, now)
		}

		if job.Attempts >= d.cfg.MaxAttempts {
			stats.Failed++
			slog.Error("notification job failed permanently",
				"job_id", job.ID, "kind", job.Kind, "topic", job.Topic, "attempts", job.Attempts, "error", deliverErr)
			return repo.Reschedule(ctx, tx.DB(), job.ID, deliverErr.Error(), nil, now)
		}

		stats.Retried++
		runAt := now.Add(d.backoff(job.Attempts))
		slog.Warn("notification job will be retried",
			"job_id", job.ID, "kind", job.Kind, "topic", job.Topic, "attempts", job.Attempts, "run_at", runAt, "error", deliverErr)
		return repo.Reschedule(ctx, tx.DB(), job.ID, deliverErr.Error(), &runAt, now)
	})
}

// backoff doubles per attempt starting at BaseBackoff, capped at maxBackoff.
func (d *Dispatcher) backoff(attempts int) time.Duration {
	delay := d.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
