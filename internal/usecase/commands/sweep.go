package commands

import (
	"context"
	"log/slog"

	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
)

const defaultExpireBatch = 100

// MaintenanceCommands are run by background workers, never by a request.
type MaintenanceCommands interface {
	// ExpirePending cancels one batch of pending bookings older than the
	// pending TTL and returns how many were cancelled.
	ExpirePending(ctx context.Context) (int, error)
	PurgeIdempotencyKeys(ctx context.Context) (int64, error)
}

type maintenanceUseCaseImpl struct {
	uow      shared.UnitOfWork
	cache    CacheInvalidator
	clock    clock.Clock
	settings Settings
}

func NewMaintenanceUseCase(uow shared.UnitOfWork, cache CacheInvalidator, clk clock.Clock, settings Settings) MaintenanceCommands {
	return &maintenanceUseCaseImpl{
		uow:      uow,
		cache:    invalidatorOrNop(cache),
		clock:    clk,
		settings: settings,
	}
}

func (uc *maintenanceUseCaseImpl) ExpirePending(ctx context.Context) (int, error) {
	limit := uc.settings.ExpireBatch
	if limit <= 0 {
		limit = defaultExpireBatch
	}

	var locationIDs []uuid.UUID
	expiredCount := 0
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locationIDs, expiredCount = nil, 0
		now := uc.clock.Now()

		expired, err := tx.Bookings().ExpirePending(ctx, tx.DB(), now.Add(-uc.settings.PendingTTL), now, limit)
		if err != nil {
			return repoErr(err, ErrDatabaseOperation)
		}
		if len(expired) == 0 {
			return nil
		}

		bookingIDs := make([]uuid.UUID, 0, len(expired))
		seen := make(map[uuid.UUID]struct{})
		for _, b := range expired {
			bookingIDs = append(bookingIDs, b.ID())
			if _, ok := seen[b.LocationID()]; !ok {
				seen[b.LocationID()] = struct{}{}
				locationIDs = append(locationIDs, b.LocationID())
			}
			if err := outbox.EnqueueEvent(ctx, tx, outbox.NewBookingEvent(outbox.EventBookingExpired, b, now)); err != nil {
				return errs.Mark(err, ErrDatabaseOperation)
			}
		}
		if _, err := tx.PaymentSessions().ExpireForBookings(ctx, tx.DB(), bookingIDs); err != nil {
			return repoErr(err, ErrDatabaseOperation)
		}
		expiredCount = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expiredCount > 0 {
		uc.cache.InvalidateLocations(ctx, locationIDs...)
		slog.Info("expired pending bookings", "count", expiredCount, "locations", len(locationIDs))
	}
	return expiredCount, nil
}

func (uc *maintenanceUseCaseImpl) PurgeIdempotencyKeys(ctx context.Context) (int64, error) {
	var deleted int64
	err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Idempotency().DeleteExpired(ctx, tx.DB(), uc.clock.Now())
		if err != nil {
			return repoErr(err, ErrDatabaseOperation)
		}
		deleted = n
		return nil
	})
	return deleted, err
}
