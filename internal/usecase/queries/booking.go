package queries

import (
	"context"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/user"
	"smartpark/internal/infra"

	"github.com/google/uuid"
)

type BookingQueries interface {
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*BookingView, *Cursor, error)
	ListForOperator(ctx context.Context, filter BookingFilter) ([]*BookingView, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingView, error)
	FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingView, error)
	FindByFilter(ctx context.Context, filter BookingFilter) ([]*BookingView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if !actor.CanAccess(view.UserID) {
		return nil, ErrBookingAccess
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*BookingView, *Cursor, error) {
	limit = ValidateLimit(limit)
	// one extra row tells whether another page exists
	fetch := int32(limit + 1) // #nosec G115 -- bounded by MaxListLimit

	var (
		rows []*BookingView
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.store.FindByUserFirstPage(ctx, userID, fetch)
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(after.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.store.FindByUserKeyset(ctx, userID, lastCreatedAt, lastID, fetch)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}, nil
}

func (q *bookingQueriesImpl) ListForOperator(ctx context.Context, filter BookingFilter) ([]*BookingView, error) {
	if filter.Status == "" {
		filter.Status = booking.StatusBooked.String()
	}
	if _, err := booking.NewStatus(filter.Status); err != nil {
		return nil, ErrInvalidStatus
	}
	return q.store.FindByFilter(ctx, filter)
}
