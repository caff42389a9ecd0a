package outbox

import (
	"context"
	"encoding/json"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
)

type Template string

const (
	TemplateBookingConfirmed  Template = "booking_confirmed"
	TemplateBookingUpdated    Template = "booking_updated"
	TemplateViolationReported Template = "violation_reported"
)

// EmailMessage is rendered by the Mailer; Data keys depend on Template.
type EmailMessage struct {
	To       string            `json:"to"`
	Template Template          `json:"template"`
	Data     map[string]string `json:"data"`
}

type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingUpdated   EventType = "booking.updated"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingDeleted   EventType = "booking.deleted"
	EventBookingExpired   EventType = "booking.expired"
)

type BookingEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	BookingID   uuid.UUID `json:"booking_id"`
	LocationID  uuid.UUID `json:"location_id"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TotalAmount int64     `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType EventType, b *booking.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		ID:          uuid.New(),
		Type:        eventType,
		BookingID:   b.ID(),
		LocationID:  b.LocationID(),
		UserID:      b.UserID(),
		Status:      b.Status().String(),
		StartTime:   b.Slot().Start(),
		EndTime:     b.Slot().End(),
		TotalAmount: b.TotalAmount().Amount(),
		OccurredAt:  now,
	}
}

type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt BookingEvent) error
}

// EnqueueEmail stores msg in the outbox as part of the caller's transaction.
func EnqueueEmail(ctx context.Context, tx shared.Tx, msg EmailMessage, now time.Time) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errs.Wrap(err, "failed to encode email job")
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), shared.JobKindEmail, string(msg.Template), payload, now)
}

func EnqueueEvent(ctx context.Context, tx shared.Tx, evt BookingEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "failed to encode event job")
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), shared.JobKindEvent, string(evt.Type), payload, evt.OccurredAt)
}
