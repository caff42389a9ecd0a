package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	Amount        int64
	Currency      string
	ProductName   string
	Description   string
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
	// IdempotencyKey is forwarded to the processor so a retried request opens one session.
	IdempotencyKey string
	// ExpiresAt is when the processor must stop accepting payment. Zero leaves its default.
	ExpiresAt time.Time
}

type CheckoutSession struct {
	ID  string
	URL string
}

type SessionOutcome struct {
	ID             string
	Paid           bool
	AmountCaptured int64
	Metadata       map[string]string
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionOutcome, error)
}

type WebhookVerifier interface {
	// CompletedSessionID verifies the signature and returns the session id of a
	// completed checkout, or "" for any other event type.
	CompletedSessionID(payload []byte, signature string) (string, error)
}

// CacheInvalidator drops cached read models after a commit. Failures are
// logged by the implementation and never fail the command.
type CacheInvalidator interface {
	InvalidateLocations(ctx context.Context, ids ...uuid.UUID)
}

type Settings struct {
	PendingTTL     time.Duration
	IdempotencyTTL time.Duration
	// Calendar decides booking_date and how times are written in emails.
	Calendar       *time.Location
	SuccessURL     string
	CancelURL      string
	ViolationEmail string
	// ExpireBatch caps how many bookings one sweep cancels.
	ExpireBatch int
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateLocations(context.Context, ...uuid.UUID) {}

func invalidatorOrNop(c CacheInvalidator) CacheInvalidator {
	if c == nil {
		return nopInvalidator{}
	}
	return c
}
