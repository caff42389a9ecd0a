package converter

import (
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// BookingColumns is the select list BookingRow scans.
const BookingColumns = `id, location_id, user_id, booking_date, start_time, end_time, plate, phone,
	contact_email, status, total_amount, payment_session_id, created_at, updated_at`

type BookingRow struct {
	ID               uuid.UUID
	LocationID       uuid.UUID
	UserID           uuid.UUID
	BookingDate      pgtype.Date
	StartTime        time.Time
	EndTime          time.Time
	Plate            string
	Phone            string
	ContactEmail     pgtype.Text
	Status           string
	TotalAmount      int64
	PaymentSessionID pgtype.Text
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *BookingRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.LocationID, &r.UserID, &r.BookingDate, &r.StartTime, &r.EndTime,
		&r.Plate, &r.Phone, &r.ContactEmail, &r.Status, &r.TotalAmount,
		&r.PaymentSessionID, &r.CreatedAt, &r.UpdatedAt,
	}
}

// BookingToDomain trusts persisted values; they were validated on the way in.
func BookingToDomain(r BookingRow, calendar *time.Location) (*booking.Booking, error) {
	status, err := booking.NewStatus(r.Status)
	if err != nil {
		return nil, err
	}
	slot, err := booking.NewTimeSlot(r.StartTime, r.EndTime)
	if err != nil {
		return nil, err
	}
	plate, err := booking.NewPlate(r.Plate)
	if err != nil {
		return nil, err
	}
	phone, err := booking.NewPhone(r.Phone)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		r.ID, r.LocationID, r.UserID,
		pgconv.DateFromPgtype(r.BookingDate, calendar),
		slot, plate, phone,
		pgconv.StringFromPgtype(r.ContactEmail),
		status,
		booking.MoneyOf(r.TotalAmount),
		pgconv.StringFromPgtype(r.PaymentSessionID),
		r.CreatedAt, r.UpdatedAt,
	), nil
}

// BookingToArgs orders the fields like BookingColumns.
func BookingToArgs(b *booking.Booking) []any {
	return []any{
		b.ID(),
		b.LocationID(),
		b.UserID(),
		pgconv.DateToPgtype(b.BookingDate()),
		b.Slot().Start(),
		b.Slot().End(),
		b.Plate().String(),
		b.Phone().String(),
		pgconv.StringToPgtype(b.ContactEmail()),
		b.Status().String(),
		b.TotalAmount().Amount(),
		pgconv.StringToPgtype(b.PaymentSessionID()),
		b.CreatedAt(),
		b.UpdatedAt(),
	}
}
