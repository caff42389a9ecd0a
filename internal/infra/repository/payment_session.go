package repository

import (
	"context"
	"time"

	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/pkg/pgconv"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	paymentSessionColumns = `session_id, booking_id, purpose, amount, checkout_url, status, created_at, completed_at`

	insertPaymentSessionSQL = `INSERT INTO payment_sessions (` + paymentSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectPaymentSessionSQL = `SELECT ` + paymentSessionColumns + ` FROM payment_sessions WHERE session_id = $1`

	selectOpenSessionByBookingSQL = `SELECT ` + paymentSessionColumns + ` FROM payment_sessions
		WHERE booking_id = $1 AND purpose = $2 AND status = 'open'
		ORDER BY created_at DESC
		LIMIT 1`

	completePaymentSessionSQL = `UPDATE payment_sessions
		SET status = 'completed', completed_at = $2
		WHERE session_id = $1 AND status = 'open'`

	expireSessionsForBookingsSQL = `UPDATE payment_sessions
		SET status = 'expired'
		WHERE booking_id = ANY($1) AND status = 'open'`
)

type PaymentSessionRepository struct{}

func NewPaymentSessionRepository() *PaymentSessionRepository {
	return &PaymentSessionRepository{}
}

func (r *PaymentSessionRepository) Create(ctx context.Context, tx db.DBTX, s *shared.PaymentSession) error {
	_, err := tx.Exec(ctx, insertPaymentSessionSQL,
		s.SessionID,
		s.BookingID,
		string(s.Purpose),
		s.Amount,
		s.CheckoutURL,
		string(s.Status),
		s.CreatedAt,
		timePtrToPgtype(s.CompletedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record payment session", err)
	}
	return nil
}

func (r *PaymentSessionRepository) FindByID(ctx context.Context, tx db.DBTX, sessionID string) (*shared.PaymentSession, error) {
	return scanPaymentSession(tx.QueryRow(ctx, selectPaymentSessionSQL, sessionID))
}

func (r *PaymentSessionRepository) FindOpenByBooking(ctx context.Context, tx db.DBTX, bookingID uuid.UUID, purpose shared.PaymentPurpose) (*shared.PaymentSession, error) {
	return scanPaymentSession(tx.QueryRow(ctx, selectOpenSessionByBookingSQL, bookingID, string(purpose)))
}

func (r *PaymentSessionRepository) Complete(ctx context.Context, tx db.DBTX, sessionID string, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, completePaymentSessionSQL, sessionID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to complete payment session", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentSessionRepository) ExpireForBookings(ctx context.Context, tx db.DBTX, bookingIDs []uuid.UUID) (int64, error) {
	if len(bookingIDs) == 0 {
		return 0, nil
	}
	ids := make([]pgtype.UUID, len(bookingIDs))
	for i, id := range bookingIDs {
		ids[i] = pgconv.UUIDToPgtype(id)
	}

	tag, err := tx.Exec(ctx, expireSessionsForBookingsSQL, ids)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire payment sessions", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentSession(row rowScanner) (*shared.PaymentSession, error) {
	var (
		s           shared.PaymentSession
		purpose     string
		status      string
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(&s.SessionID, &s.BookingID, &purpose, &s.Amount, &s.CheckoutURL, &status, &s.CreatedAt, &completedAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load payment session", err)
	}
	s.Purpose = shared.PaymentPurpose(purpose)
	s.Status = shared.PaymentSessionStatus(status)
	s.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	return &s, nil
}

func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgconv.TimeToPgtype(*t)
}
