package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidWebhook = errs.NewKind(errs.KindInvalidInput, "invalid webhook signature or payload")

type ReconcileOutcome string

const (
	ReconcileConfirmed   ReconcileOutcome = "confirmed"
	ReconcileEditApplied ReconcileOutcome = "edit_applied"
	// ReconcileFailed means the processor reports the session unpaid.
	ReconcileFailed      ReconcileOutcome = "failed"
	ReconcileReplayed    ReconcileOutcome = "replayed"
	ReconcileLatePayment ReconcileOutcome = "late_payment"
)

type ReconcileResult struct {
	SessionID string
	BookingID uuid.UUID
	Outcome   ReconcileOutcome
}

type PaymentCommands interface {
	ReconcileSession(ctx context.Context, sessionID string) (*ReconcileResult, error)
	// HandleWebhook returns a nil result for events that are not completed checkouts.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error)
}

type paymentUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  PaymentGateway
	verifier WebhookVerifier
	cache    CacheInvalidator
	clock    clock.Clock
	settings Settings
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	verifier WebhookVerifier,
	cache CacheInvalidator,
	clk clock.Clock,
	settings Settings,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		verifier: verifier,
		cache:    invalidatorOrNop(cache),
		clock:    clk,
		settings: settings,
	}
}

func (uc *paymentUseCaseImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error) {
	sessionID, err := uc.verifier.CompletedSessionID(payload, signature)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidWebhook)
	}
	if sessionID == "" {
		return nil, nil
	}
	return uc.ReconcileSession(ctx, sessionID)
}

func (uc *paymentUseCaseImpl) ReconcileSession(ctx context.Context, sessionID string) (*ReconcileResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}

	outcome, err := uc.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentProvider)
	}
	if !outcome.Paid {
		slog.Info("checkout session not paid", "session_id", sessionID)
		bookingID, _ := metadataBookingID(outcome.Metadata)
		return &ReconcileResult{SessionID: sessionID, BookingID: bookingID, Outcome: ReconcileFailed}, nil
	}

	bookingID, err := metadataBookingID(outcome.Metadata)
	if err != nil {
		return nil, err
	}
	var terms *editTerms
	if isEditMetadata(outcome.Metadata) {
		parsed, err := parseEditMetadata(outcome.Metadata, uc.calendar())
		if err != nil {
			return nil, err
		}
		terms = &parsed
	}

	result := &ReconcileResult{SessionID: sessionID, BookingID: bookingID}
	var locationID uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locationID = uuid.Nil
		session, err := tx.PaymentSessions().FindByID(ctx, tx.DB(), sessionID)
		if err != nil {
			return repoErr(err, ErrPaymentSessionNotFound)
		}
		if session.BookingID != bookingID {
			return ErrPaymentSessionMisuse
		}

		now := uc.clock.Now()
		claimed, err := tx.PaymentSessions().Complete(ctx, tx.DB(), sessionID, now)
		if err != nil {
			return repoErr(err, ErrDatabaseOperation)
		}
		if !claimed {
			if session.Status == shared.SessionExpired {
				slog.Warn("payment received for expired checkout session", "session_id", sessionID, "booking_id", bookingID)
				result.Outcome = ReconcileLatePayment
				return nil
			}
			result.Outcome = ReconcileReplayed
			return nil
		}

		b, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
		if err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		loc, err := tx.Locations().FindByID(ctx, tx.DB(), b.LocationID())
		if err != nil {
			return repoErr(err, ErrLocationNotFound)
		}

		var (
			eventType outbox.EventType
			template  outbox.Template
		)
		// a stale pending booking no longer holds capacity even before the sweep cancels it
		stale := b.IsExpired(now.Add(-uc.settings.PendingTTL))
		switch {
		case terms != nil && (b.IsCancelled() || stale):
			slog.Warn("paid edit for a booking that no longer holds capacity",
				"session_id", sessionID, "booking_id", bookingID, "status", b.Status())
			result.Outcome = ReconcileLatePayment
			return nil
		case terms != nil:
			b.ApplyPaidEdit(terms.BookingDate, terms.Slot, terms.Total, sessionID, now)
			eventType, template = outbox.EventBookingUpdated, outbox.TemplateBookingUpdated
			result.Outcome = ReconcileEditApplied
		case stale:
			slog.Warn("late payment for an expired pending booking", "session_id", sessionID, "booking_id", bookingID)
			result.Outcome = ReconcileLatePayment
			return nil
		default:
			if err := b.Confirm(sessionID, booking.MoneyOf(outcome.AmountCaptured), now); err != nil {
				slog.Warn("late payment for booking that is no longer pending",
					"session_id", sessionID, "booking_id", bookingID, "status", b.Status())
				result.Outcome = ReconcileLatePayment
				return nil
			}
			eventType, template = outbox.EventBookingConfirmed, outbox.TemplateBookingConfirmed
			result.Outcome = ReconcileConfirmed
		}

		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		if err := outbox.EnqueueEvent(ctx, tx, outbox.NewBookingEvent(eventType, b, now)); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if b.ContactEmail() != "" {
			if err := outbox.EnqueueEmail(ctx, tx, bookingEmail(template, b, loc, uc.calendar()), now); err != nil {
				return errs.Mark(err, ErrDatabaseOperation)
			}
		}
		locationID = loc.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if locationID != uuid.Nil {
		uc.cache.InvalidateLocations(ctx, locationID)
	}
	slog.Info("checkout session reconciled", "session_id", sessionID, "booking_id", bookingID, "outcome", result.Outcome)
	return result, nil
}

func (uc *paymentUseCaseImpl) calendar() *time.Location {
	if uc.settings.Calendar == nil {
		return time.UTC
	}
	return uc.settings.Calendar
}
