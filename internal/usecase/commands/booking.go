package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/location"
	"smartpark/internal/domain/user"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/infra"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
)

const createBookingEndpoint = "POST /bookings"

type CreateBookingResult struct {
	BookingID   uuid.UUID
	Status      booking.Status
	TotalAmount int64
	Currency    string
	SessionID   string
	CheckoutURL string
	IsReplayed  bool
}

type EditOutcome string

const (
	EditApplied         EditOutcome = "applied"
	EditPaymentRequired EditOutcome = "payment_required"
)

type EditBookingResult struct {
	BookingID   uuid.UUID
	Outcome     EditOutcome
	NewTotal    int64
	AmountDue   int64
	Currency    string
	SessionID   string
	CheckoutURL string
}

// Code is 0 when the edit was applied and 100 when it waits for payment.
func (r EditBookingResult) Code() int {
	if r.Outcome == EditPaymentRequired {
		return 100
	}
	return 0
}

type CancelBookingResult struct {
	BookingID        uuid.UUID
	AlreadyCancelled bool
}

type DeleteBookingResult struct {
	BookingID        uuid.UUID
	ReleasedCapacity bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, req reqdto.CreateBookingRequest, actor user.Actor, idempotencyKey *uuid.UUID) (*CreateBookingResult, error)
	EditBooking(ctx context.Context, id uuid.UUID, req reqdto.EditBookingRequest, actor user.Actor) (*EditBookingResult, error)
	CancelBooking(ctx context.Context, id uuid.UUID, actor user.Actor) (*CancelBookingResult, error)
	DeleteBooking(ctx context.Context, id uuid.UUID, actor user.Actor) (*DeleteBookingResult, error)
}

type bookingUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  PaymentGateway
	cache    CacheInvalidator
	services *booking.Services
	settings Settings
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	cache CacheInvalidator,
	services *booking.Services,
	settings Settings,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		cache:    invalidatorOrNop(cache),
		services: services,
		settings: settings,
	}
}

func (uc *bookingUseCaseImpl) CreateBooking(
	ctx context.Context,
	req reqdto.CreateBookingRequest,
	actor user.Actor,
	idempotencyKey *uuid.UUID,
) (*CreateBookingResult, error) {
	input, err := req.ToDomain()
	if err != nil {
		return nil, domainErr(err)
	}
	requestHash := calculateRequestHash(req)

	var (
		created *booking.Booking
		loc     *location.Location
		replay  *CreateBookingResult
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created, loc, replay = nil, nil, nil

		if idempotencyKey != nil {
			existing, err := uc.claimIdempotencyKey(ctx, tx, *idempotencyKey, actor.ID, requestHash)
			if err != nil {
				return err
			}
			if existing != nil {
				replay = existing
				return nil
			}
		}

		l, err := uc.reserveCapacity(ctx, tx, req.LocationID, input.Slot, nil)
		if err != nil {
			return err
		}
		b, err := booking.NewBooking(uc.services, locationSpec(l), actor.ID, input.Slot, input.Plate, input.Phone, actor.Email)
		if err != nil {
			return domainErr(err)
		}
		if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		created, loc = b, l
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		Amount:         created.TotalAmount().Amount(),
		Currency:       loc.Currency().String(),
		ProductName:    "Parking at " + loc.Address().String(),
		Description:    describeSlot(created.Slot(), uc.calendar()),
		CustomerEmail:  actor.Email,
		Metadata:       newBookingMetadata(created.ID()),
		SuccessURL:     uc.settings.SuccessURL,
		CancelURL:      uc.settings.CancelURL,
		IdempotencyKey: "booking-" + created.ID().String(),
		ExpiresAt:      created.CreatedAt().Add(uc.settings.PendingTTL),
	})
	if err != nil {
		uc.abandon(ctx, created.ID(), actor.ID, idempotencyKey)
		return nil, errs.Mark(err, ErrPaymentProvider)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), created.ID())
		if err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		now := uc.services.Clock.Now()
		b.AttachPaymentSession(session.ID, now)
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		err = tx.PaymentSessions().Create(ctx, tx.DB(), &shared.PaymentSession{
			SessionID:   session.ID,
			BookingID:   b.ID(),
			Purpose:     shared.PurposeNew,
			Amount:      b.TotalAmount().Amount(),
			CheckoutURL: session.URL,
			Status:      shared.SessionOpen,
			CreatedAt:   now,
		})
		if err != nil {
			return repoErr(err, ErrPaymentSessionNotFound)
		}
		if idempotencyKey != nil {
			if err := tx.Idempotency().MarkCompleted(ctx, tx.DB(), *idempotencyKey, actor.ID, b.ID()); err != nil {
				return repoErr(err, ErrDatabaseOperation)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidateLocations(ctx, created.LocationID())

	return &CreateBookingResult{
		BookingID:   created.ID(),
		Status:      created.Status(),
		TotalAmount: created.TotalAmount().Amount(),
		Currency:    loc.Currency().String(),
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// claimIdempotencyKey returns a replay result when the key already belongs to
// a completed request with the same body.
func (uc *bookingUseCaseImpl) claimIdempotencyKey(
	ctx context.Context,
	tx shared.Tx,
	key, userID uuid.UUID,
	requestHash string,
) (*CreateBookingResult, error) {
	now := uc.services.Clock.Now()
	claimed, err := tx.Idempotency().TryInsert(ctx, tx.DB(), key, userID, createBookingEndpoint, requestHash, now, now.Add(uc.settings.IdempotencyTTL))
	if err != nil {
		return nil, repoErr(err, ErrDatabaseOperation)
	}
	if claimed {
		return nil, nil
	}

	existing, err := tx.Idempotency().Get(ctx, tx.DB(), key, userID)
	if err != nil {
		return nil, repoErr(err, ErrIdempotencyInProgress)
	}
	if existing.RequestHash != requestHash {
		return nil, ErrDuplicateBooking
	}
	if existing.Status != shared.IdempotencyCompleted || existing.ResultBookingID == nil {
		return nil, ErrIdempotencyInProgress
	}
	return uc.replayResult(ctx, tx, *existing.ResultBookingID)
}

func (uc *bookingUseCaseImpl) replayResult(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*CreateBookingResult, error) {
	b, err := tx.Bookings().FindByID(ctx, tx.DB(), bookingID)
	if err != nil {
		return nil, repoErr(err, ErrBookingNotFound)
	}
	loc, err := tx.Locations().FindByID(ctx, tx.DB(), b.LocationID())
	if err != nil {
		return nil, repoErr(err, ErrLocationNotFound)
	}

	result := &CreateBookingResult{
		BookingID:   b.ID(),
		Status:      b.Status(),
		TotalAmount: b.TotalAmount().Amount(),
		Currency:    loc.Currency().String(),
		SessionID:   b.PaymentSessionID(),
		IsReplayed:  true,
	}
	if b.PaymentSessionID() == "" {
		return result, nil
	}
	session, err := tx.PaymentSessions().FindByID(ctx, tx.DB(), b.PaymentSessionID())
	if err != nil {
		return nil, repoErr(err, ErrPaymentSessionNotFound)
	}
	if session.Status == shared.SessionOpen {
		result.CheckoutURL = session.CheckoutURL
	}
	return result, nil
}

// abandon cancels a booking whose checkout could not be opened and frees the
// idempotency key. It runs detached from the request context.
func (uc *bookingUseCaseImpl) abandon(ctx context.Context, bookingID, userID uuid.UUID, idempotencyKey *uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.Cancel(uc.services.Clock.Now()) {
			if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
				return err
			}
		}
		if idempotencyKey != nil {
			return tx.Idempotency().Release(ctx, tx.DB(), *idempotencyKey, userID)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to release booking after checkout error", "booking_id", bookingID, "error", err)
	}
}

func (uc *bookingUseCaseImpl) EditBooking(
	ctx context.Context,
	id uuid.UUID,
	req reqdto.EditBookingRequest,
	actor user.Actor,
) (*EditBookingResult, error) {
	slot, err := req.ToDomain()
	if err != nil {
		return nil, domainErr(err)
	}

	var (
		quote     booking.EditQuote
		loc       *location.Location
		applied   bool
		pending   bool
		expiresAt time.Time
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		if b.UserID() != actor.ID {
			return ErrBookingAccess
		}
		if b.IsCancelled() {
			return domainErr(booking.ErrBookingCancelled)
		}

		self := b.ID()
		l, err := uc.reserveCapacity(ctx, tx, b.LocationID(), slot, &self)
		if err != nil {
			return err
		}
		q, err := b.QuoteEdit(uc.services, slot, booking.MoneyOf(l.HourlyRate()))
		if err != nil {
			return domainErr(err)
		}
		quote, loc, applied = q, l, !q.RequiresPayment()
		if !applied {
			// a pending booking must be paid before its hold lapses
			pending = b.IsPending()
			expiresAt = uc.services.Clock.Now().Add(uc.settings.PendingTTL)
			if pending {
				expiresAt = b.CreatedAt().Add(uc.settings.PendingTTL)
			}
			return nil
		}

		now := uc.services.Clock.Now()
		if err := b.Reschedule(q, now); err != nil {
			return domainErr(err)
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		if err := outbox.EnqueueEvent(ctx, tx, outbox.NewBookingEvent(outbox.EventBookingUpdated, b, now)); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if b.ContactEmail() != "" {
			msg := bookingEmail(outbox.TemplateBookingUpdated, b, l, uc.calendar())
			if err := outbox.EnqueueEmail(ctx, tx, msg, now); err != nil {
				return errs.Mark(err, ErrDatabaseOperation)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &EditBookingResult{
		BookingID: id,
		NewTotal:  quote.NewTotal.Amount(),
		Currency:  loc.Currency().String(),
	}
	if applied {
		uc.cache.InvalidateLocations(ctx, loc.ID())
		result.Outcome = EditApplied
		return result, nil
	}

	amountDue := quote.AmountDue().Amount()
	session, err := uc.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		Amount:        amountDue,
		Currency:      loc.Currency().String(),
		ProductName:   "Booking change at " + loc.Address().String(),
		Description:   describeSlot(quote.Slot, uc.calendar()),
		CustomerEmail: actor.Email,
		Metadata:      editMetadata(id, quote),
		SuccessURL:    uc.settings.SuccessURL,
		CancelURL:     uc.settings.CancelURL,
		IdempotencyKey: fmt.Sprintf("booking-edit-%s-%d-%d-%d",
			id, quote.Slot.Start().Unix(), quote.Slot.End().Unix(), quote.NewTotal.Amount()),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentProvider)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// the processor hands back the same session for a repeated quote
		if _, err := tx.PaymentSessions().FindByID(ctx, tx.DB(), session.ID); err == nil {
			return nil
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return repoErr(err, ErrPaymentSessionNotFound)
		}
		if pending {
			// the edit session replaces the unpaid checkout for the original slot
			if _, err := tx.PaymentSessions().ExpireForBookings(ctx, tx.DB(), []uuid.UUID{id}); err != nil {
				return repoErr(err, ErrPaymentSessionNotFound)
			}
		}
		err := tx.PaymentSessions().Create(ctx, tx.DB(), &shared.PaymentSession{
			SessionID:   session.ID,
			BookingID:   id,
			Purpose:     shared.PurposeEdit,
			Amount:      amountDue,
			CheckoutURL: session.URL,
			Status:      shared.SessionOpen,
			CreatedAt:   uc.services.Clock.Now(),
		})
		return repoErr(err, ErrPaymentSessionNotFound)
	})
	if err != nil {
		return nil, err
	}

	result.Outcome = EditPaymentRequired
	result.AmountDue = amountDue
	result.SessionID = session.ID
	result.CheckoutURL = session.URL
	return result, nil
}

func (uc *bookingUseCaseImpl) CancelBooking(ctx context.Context, id uuid.UUID, actor user.Actor) (*CancelBookingResult, error) {
	result := &CancelBookingResult{BookingID: id}
	var locationID uuid.UUID

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result.AlreadyCancelled = false
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		if !actor.CanAccess(b.UserID()) {
			return ErrBookingAccess
		}
		locationID = b.LocationID()

		now := uc.services.Clock.Now()
		if !b.Cancel(now) {
			result.AlreadyCancelled = true
			return nil
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		if _, err := tx.PaymentSessions().ExpireForBookings(ctx, tx.DB(), []uuid.UUID{id}); err != nil {
			return repoErr(err, ErrDatabaseOperation)
		}
		if err := outbox.EnqueueEvent(ctx, tx, outbox.NewBookingEvent(outbox.EventBookingCancelled, b, now)); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCancelled {
		uc.cache.InvalidateLocations(ctx, locationID)
	}
	return result, nil
}

func (uc *bookingUseCaseImpl) DeleteBooking(ctx context.Context, id uuid.UUID, actor user.Actor) (*DeleteBookingResult, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrBookingAccess
	}

	result := &DeleteBookingResult{BookingID: id}
	var locationID uuid.UUID

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		now := uc.services.Clock.Now()
		result.ReleasedCapacity = b.HoldsCapacity(uc.pendingCutoff())
		locationID = b.LocationID()

		if err := tx.Bookings().Delete(ctx, tx.DB(), id); err != nil {
			return repoErr(err, ErrBookingNotFound)
		}
		if err := outbox.EnqueueEvent(ctx, tx, outbox.NewBookingEvent(outbox.EventBookingDeleted, b, now)); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidateLocations(ctx, locationID)
	return result, nil
}

// reserveCapacity locks the location and checks that one more booking fits
// into slot. The lock is held until the surrounding transaction ends.
func (uc *bookingUseCaseImpl) reserveCapacity(
	ctx context.Context,
	tx shared.Tx,
	locationID uuid.UUID,
	slot booking.TimeSlot,
	excludeID *uuid.UUID,
) (*location.Location, error) {
	loc, err := tx.Locations().LockByID(ctx, tx.DB(), locationID)
	if err != nil {
		return nil, repoErr(err, ErrLocationNotFound)
	}
	if !loc.IsBookable() {
		return nil, ErrLocationUnavailable
	}

	overlapping, err := tx.Bookings().CountOverlapping(ctx, tx.DB(), shared.OverlapQuery{
		LocationID:    locationID,
		Slot:          slot,
		ExcludeID:     excludeID,
		PendingCutoff: uc.pendingCutoff(),
	})
	if err != nil {
		return nil, repoErr(err, ErrDatabaseOperation)
	}
	availability := booking.Availability{Capacity: loc.NumberOfSpots(), Overlapping: overlapping}
	if !availability.IsAvailable() {
		return nil, ErrCapacityExceeded
	}
	return loc, nil
}

func (uc *bookingUseCaseImpl) pendingCutoff() time.Time {
	return uc.services.Clock.Now().Add(-uc.settings.PendingTTL)
}

func (uc *bookingUseCaseImpl) calendar() *time.Location {
	if uc.settings.Calendar == nil {
		return time.UTC
	}
	return uc.settings.Calendar
}

func locationSpec(loc *location.Location) booking.LocationSpec {
	return booking.LocationSpec{
		ID:         loc.ID(),
		HourlyRate: booking.MoneyOf(loc.HourlyRate()),
		Capacity:   loc.NumberOfSpots(),
		Bookable:   loc.IsBookable(),
	}
}

func calculateRequestHash(req reqdto.CreateBookingRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
