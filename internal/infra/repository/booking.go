package repository

import (
	"context"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/infra/repository/converter"
	"smartpark/internal/pkg/pgconv"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertBookingSQL = `INSERT INTO bookings (` + converter.BookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	selectBookingSQL = `SELECT ` + converter.BookingColumns + ` FROM bookings WHERE id = $1`

	lockBookingSQL = selectBookingSQL + ` FOR UPDATE`

	updateBookingSQL = `UPDATE bookings
		SET booking_date = $2, start_time = $3, end_time = $4, plate = $5, phone = $6,
		    contact_email = $7, status = $8, total_amount = $9, payment_session_id = $10,
		    updated_at = $11
		WHERE id = $1`

	deleteBookingSQL = `DELETE FROM bookings WHERE id = $1`

	// Half-open overlap: an interval ending exactly when another starts does not count.
	countOverlappingSQL = `SELECT count(*) FROM bookings
		WHERE location_id = $1
		  AND start_time < $3 AND $2 < end_time
		  AND (status = 'booked' OR (status = 'pending' AND created_at >= $4))
		  AND ($5::uuid IS NULL OR id <> $5)`

	expirePendingSQL = `UPDATE bookings
		SET status = 'cancelled', total_amount = 0, updated_at = $2
		WHERE id IN (
			SELECT id FROM bookings
			WHERE status = 'pending' AND created_at < $1
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + converter.BookingColumns
)

type BookingRepository struct {
	calendar *time.Location
}

// NewBookingRepository reads booking_date back in calendar.
func NewBookingRepository(calendar *time.Location) *BookingRepository {
	if calendar == nil {
		calendar = time.UTC
	}
	return &BookingRepository{calendar: calendar}
}

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	if _, err := tx.Exec(ctx, insertBookingSQL, converter.BookingToArgs(b)...); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.scanOne(tx.QueryRow(ctx, selectBookingSQL, id))
}

func (r *BookingRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.scanOne(tx.QueryRow(ctx, lockBookingSQL, id))
}

func (r *BookingRepository) Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	tag, err := tx.Exec(ctx, updateBookingSQL,
		b.ID(),
		pgconv.DateToPgtype(b.BookingDate()),
		b.Slot().Start(),
		b.Slot().End(),
		b.Plate().String(),
		b.Phone().String(),
		pgconv.StringToPgtype(b.ContactEmail()),
		b.Status().String(),
		b.TotalAmount().Amount(),
		pgconv.StringToPgtype(b.PaymentSessionID()),
		b.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, deleteBookingSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return nil
}

func (r *BookingRepository) CountOverlapping(ctx context.Context, tx db.DBTX, q shared.OverlapQuery) (int, error) {
	var count int64
	err := tx.QueryRow(ctx, countOverlappingSQL,
		q.LocationID,
		q.Slot.Start(),
		q.Slot.End(),
		q.PendingCutoff,
		pgconv.UUIDPtrToPgtype(q.ExcludeID),
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count overlapping bookings", err)
	}
	return int(count), nil
}

func (r *BookingRepository) ExpirePending(ctx context.Context, tx db.DBTX, cutoff, now time.Time, limit int) ([]*booking.Booking, error) {
	rows, err := tx.Query(ctx, expirePendingSQL, cutoff, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to expire pending bookings", err)
	}
	defer rows.Close()

	var expired []*booking.Booking
	for rows.Next() {
		b, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired bookings", err)
	}
	return expired, nil
}

func (r *BookingRepository) scanOne(row pgx.Row) (*booking.Booking, error) {
	var br converter.BookingRow
	if err := row.Scan(br.ScanTargets()...); err != nil {
		return nil, infra.WrapRepoErr("failed to load booking", err)
	}

	b, err := converter.BookingToDomain(br, r.calendar)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid booking row", err)
	}
	return b, nil
}
