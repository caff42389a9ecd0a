package bootstrap

import (
	"context"
	"log/slog"

	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/config"
	"smartpark/internal/scheduler"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"

	"go.uber.org/fx"
)

var WorkersModule = fx.Module("workers",
	fx.Provide(
		NewDispatcher,
	),
	fx.Invoke(StartWorkers),
)

func NewDispatcher(uow shared.UnitOfWork, mailer outbox.Mailer, publisher outbox.EventPublisher, clk clock.Clock, cfg config.Config) *outbox.Dispatcher {
	return outbox.NewDispatcher(uow, mailer, publisher, clk, outbox.DispatchConfig{
		BatchSize:         cfg.Workers.DispatchBatch,
		MaxAttempts:       cfg.Workers.MaxAttempts,
		VisibilityTimeout: cfg.Workers.VisibilityTimeout,
	})
}

// StartWorkers runs the sweeper and the outbox dispatcher for the lifetime of the app.
func StartWorkers(lc fx.Lifecycle, cfg config.Config, maintenance commands.MaintenanceCommands, dispatcher *outbox.Dispatcher, logger *slog.Logger) {
	if !cfg.Workers.Enabled {
		logger.Info("background workers disabled")
		return
	}

	s := scheduler.New(logger,
		scheduler.SweepJob(maintenance, cfg.Workers.SweepInterval, logger),
		scheduler.DispatchJob(dispatcher, cfg.Workers.DispatchInterval, cfg.Workers.DispatchBatch, logger),
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}
