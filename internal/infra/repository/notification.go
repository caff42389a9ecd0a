package repository

import (
	"context"
	"time"

	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	createNotificationJobSQL = `INSERT INTO notification_jobs (kind, topic, payload, status, run_at)
		VALUES ($1, $2, $3, 'queued', $4)`

	claimDueJobsSQL = `UPDATE notification_jobs
		SET status = 'processing', attempts = attempts + 1, updated_at = $1
		WHERE id IN (
			SELECT id FROM notification_jobs
			WHERE (status = 'queued' AND run_at <= $1)
			   OR (status = 'processing' AND updated_at < $2)
			ORDER BY run_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, topic, payload, status, attempts, run_at`

	markJobDoneSQL = `UPDATE notification_jobs
		SET status = 'done', last_error = NULL, updated_at = $2
		WHERE id = $1`

	rescheduleJobSQL = `UPDATE notification_jobs
		SET status = CASE WHEN $3::timestamptz IS NULL THEN 'failed' ELSE 'queued' END,
		    last_error = $2,
		    run_at = COALESCE($3::timestamptz, run_at),
		    updated_at = $4
		WHERE id = $1`
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind shared.JobKind, topic string, payload []byte, runAt time.Time) error {
	if _, err := tx.Exec(ctx, createNotificationJobSQL, string(kind), topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimDue(ctx context.Context, tx db.DBTX, now, staleBefore time.Time, limit int) ([]shared.NotificationJob, error) {
	rows, err := tx.Query(ctx, claimDueJobsSQL, now, staleBefore, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	var jobs []shared.NotificationJob
	for rows.Next() {
		var (
			job      shared.NotificationJob
			kind     string
			status   string
			attempts int32
		)
		if err := rows.Scan(&job.ID, &kind, &job.Topic, &job.Payload, &status, &attempts, &job.RunAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		job.Kind = shared.JobKind(kind)
		job.Status = shared.JobStatus(status)
		job.Attempts = int(attempts)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkDone(ctx context.Context, tx db.DBTX, jobID uuid.UUID, now time.Time) error {
	if _, err := tx.Exec(ctx, markJobDoneSQL, jobID, now); err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}

func (r *NotificationRepository) Reschedule(ctx context.Context, tx db.DBTX, jobID uuid.UUID, lastError string, runAt *time.Time, now time.Time) error {
	next := pgtype.Timestamptz{Valid: false}
	if runAt != nil {
		next = pgtype.Timestamptz{Time: *runAt, Valid: true}
	}
	if _, err := tx.Exec(ctx, rescheduleJobSQL, jobID, lastError, next, now); err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}
