package shared

import (
	"context"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/location"
	"smartpark/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Locations() LocationRepository
	Bookings() BookingRepository
	PaymentSessions() PaymentSessionRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	DB() db.DBTX
}

type LocationRepository interface {
	Create(ctx context.Context, tx db.DBTX, loc *location.Location) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*location.Location, error)
	// LockByID takes the row lock that serializes capacity decisions for the location.
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*location.Location, error)
	Update(ctx context.Context, tx db.DBTX, loc *location.Location) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
}

// OverlapQuery selects the capacity-holding bookings of a location whose
// interval overlaps Slot.
type OverlapQuery struct {
	LocationID    uuid.UUID
	Slot          booking.TimeSlot
	ExcludeID     *uuid.UUID
	PendingCutoff time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	CountOverlapping(ctx context.Context, tx db.DBTX, q OverlapQuery) (int, error)
	// ExpirePending cancels pending bookings created before cutoff and returns them.
	ExpirePending(ctx context.Context, tx db.DBTX, cutoff, now time.Time, limit int) ([]*booking.Booking, error)
}

type PaymentPurpose string

const (
	PurposeNew  PaymentPurpose = "new"
	PurposeEdit PaymentPurpose = "edit"
)

type PaymentSessionStatus string

const (
	SessionOpen      PaymentSessionStatus = "open"
	SessionCompleted PaymentSessionStatus = "completed"
	SessionExpired   PaymentSessionStatus = "expired"
)

type PaymentSession struct {
	SessionID   string
	BookingID   uuid.UUID
	Purpose     PaymentPurpose
	Amount      int64
	CheckoutURL string
	Status      PaymentSessionStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type PaymentSessionRepository interface {
	Create(ctx context.Context, tx db.DBTX, s *PaymentSession) error
	FindByID(ctx context.Context, tx db.DBTX, sessionID string) (*PaymentSession, error)
	// FindOpenByBooking returns the latest open session for the booking and purpose.
	FindOpenByBooking(ctx context.Context, tx db.DBTX, bookingID uuid.UUID, purpose PaymentPurpose) (*PaymentSession, error)
	// Complete moves an open session to completed. It reports false when the
	// session was not open, which makes every callback after the first a no-op.
	Complete(ctx context.Context, tx db.DBTX, sessionID string, now time.Time) (bool, error)
	ExpireForBookings(ctx context.Context, tx db.DBTX, bookingIDs []uuid.UUID) (int64, error)
}

type IdempotencyStatus string

const (
	IdempotencyProcessing IdempotencyStatus = "processing"
	IdempotencyCompleted  IdempotencyStatus = "completed"
)

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Status          IdempotencyStatus
	RequestHash     string
	ResultBookingID *uuid.UUID
	ExpiresAt       time.Time
}

type IdempotencyRepository interface {
	// TryInsert claims the key. An expired record is taken over; a live one is left alone and false is returned.
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) (*IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, tx db.DBTX, key, userID, bookingID uuid.UUID) error
	Release(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, tx db.DBTX, now time.Time) (int64, error)
}

type JobKind string

const (
	JobKindEmail JobKind = "email"
	JobKindEvent JobKind = "event"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

type NotificationJob struct {
	ID       uuid.UUID
	Kind     JobKind
	Topic    string
	Payload  []byte
	Status   JobStatus
	Attempts int
	RunAt    time.Time
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind JobKind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue moves up to limit due jobs to processing. Jobs stuck in
	// processing since before staleBefore are claimed again.
	ClaimDue(ctx context.Context, tx db.DBTX, now, staleBefore time.Time, limit int) ([]NotificationJob, error)
	MarkDone(ctx context.Context, tx db.DBTX, jobID uuid.UUID, now time.Time) error
	// Reschedule records a failed attempt; a nil runAt marks the job failed for good.
	Reschedule(ctx context.Context, tx db.DBTX, jobID uuid.UUID, lastError string, runAt *time.Time, now time.Time) error
}
