package readstore

import (
	"context"
	"time"

	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/pkg/pgconv"
	"smartpark/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	bookingViewSelect = `SELECT b.id, b.location_id, l.address, b.user_id, to_char(b.booking_date, 'YYYY-MM-DD'),
		       b.start_time, b.end_time, b.plate, b.phone, b.contact_email, b.status,
		       b.total_amount, l.currency, b.payment_session_id, b.created_at, b.updated_at
		FROM bookings b
		JOIN parking_locations l ON l.id = b.location_id`

	getBookingViewSQL = bookingViewSelect + ` WHERE b.id = $1`

	bookingsByUserFirstPageSQL = bookingViewSelect + `
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2`

	bookingsByUserKeysetSQL = bookingViewSelect + `
		WHERE b.user_id = $1 AND (b.created_at, b.id) < ($2, $3)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $4`

	bookingsByFilterSQL = bookingViewSelect + `
		WHERE b.booking_date = $1
		  AND ($2::uuid IS NULL OR b.location_id = $2)
		  AND b.status = $3
		ORDER BY b.start_time, b.id`
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	view, err := scanBookingView(s.db.QueryRow(ctx, getBookingViewSQL, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return view, nil
}

func (s *BookingReadStore) FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	rows, err := s.db.Query(ctx, bookingsByUserFirstPageSQL, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list user bookings", err)
	}
	return collectBookingViews(rows)
}

func (s *BookingReadStore) FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingView, error) {
	rows, err := s.db.Query(ctx, bookingsByUserKeysetSQL, userID, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list user bookings", err)
	}
	return collectBookingViews(rows)
}

func (s *BookingReadStore) FindByFilter(ctx context.Context, filter queries.BookingFilter) ([]*queries.BookingView, error) {
	rows, err := s.db.Query(ctx, bookingsByFilterSQL,
		pgconv.DateToPgtype(filter.Date),
		pgconv.UUIDPtrToPgtype(filter.LocationID),
		filter.Status,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	return collectBookingViews(rows)
}

func collectBookingViews(rows pgx.Rows) ([]*queries.BookingView, error) {
	defer rows.Close()

	views := make([]*queries.BookingView, 0)
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read bookings", err)
	}
	return views, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		v            queries.BookingView
		contactEmail pgtype.Text
		sessionID    pgtype.Text
	)
	err := row.Scan(
		&v.ID, &v.LocationID, &v.LocationAddress, &v.UserID, &v.BookingDate,
		&v.StartTime, &v.EndTime, &v.VehiclePlate, &v.Phone, &contactEmail, &v.Status,
		&v.TotalAmount, &v.Currency, &sessionID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ContactEmail = pgconv.StringFromPgtype(contactEmail)
	v.PaymentSessionID = pgconv.StringPtrFromPgtype(sessionID)
	return &v, nil
}
