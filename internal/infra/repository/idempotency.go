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
	// A live key is left untouched; an expired one is taken over by the new request.
	tryInsertIdempotencyKeySQL = `INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, 'processing', $6, $5)
		ON CONFLICT (key, user_id) DO UPDATE
		SET endpoint = EXCLUDED.endpoint,
		    request_hash = EXCLUDED.request_hash,
		    status = 'processing',
		    result_booking_id = NULL,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
		WHERE idempotency_keys.expires_at <= $5`

	getIdempotencyKeySQL = `SELECT key, user_id, status, request_hash, result_booking_id, expires_at
		FROM idempotency_keys WHERE key = $1 AND user_id = $2`

	completeIdempotencyKeySQL = `UPDATE idempotency_keys
		SET status = 'completed', result_booking_id = $3
		WHERE key = $1 AND user_id = $2`

	deleteIdempotencyKeySQL = `DELETE FROM idempotency_keys WHERE key = $1 AND user_id = $2 AND status = 'processing'`

	deleteExpiredIdempotencyKeysSQL = `DELETE FROM idempotency_keys WHERE expires_at <= $1`
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, tryInsertIdempotencyKeySQL, key, userID, endpoint, requestHash, now, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec      shared.IdempotencyRecord
		status   string
		resultID pgtype.UUID
	)
	err := tx.QueryRow(ctx, getIdempotencyKeySQL, key, userID).
		Scan(&rec.Key, &rec.UserID, &status, &rec.RequestHash, &resultID, &rec.ExpiresAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec.Status = shared.IdempotencyStatus(status)
	rec.ResultBookingID = pgconv.UUIDPtrFromPgtype(resultID)
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, tx db.DBTX, key, userID, bookingID uuid.UUID) error {
	if _, err := tx.Exec(ctx, completeIdempotencyKeySQL, key, userID, bookingID); err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

// Release drops a key still in processing so the client may retry with it.
func (r *IdempotencyRepository) Release(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, deleteIdempotencyKeySQL, key, userID); err != nil {
		return infra.WrapRepoErr("failed to release idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, tx db.DBTX, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, deleteExpiredIdempotencyKeysSQL, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
