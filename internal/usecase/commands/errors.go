package commands

import (
	"errors"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/location"
	"smartpark/internal/infra"
	"smartpark/internal/pkg/errs"
)

var (
	ErrLocationNotFound       = errs.NewKind(errs.KindNotFound, "location not found")
	ErrBookingNotFound        = errs.NewKind(errs.KindNotFound, "booking not found")
	ErrPaymentSessionNotFound = errs.NewKind(errs.KindNotFound, "payment session not found")

	ErrInvalidTimeSlot      = errs.NewKind(errs.KindInvalidInput, "start time must be before end time")
	ErrDomainValidation     = errs.NewKind(errs.KindInvalidInput, "domain validation error")
	ErrMissingSessionID     = errs.NewKind(errs.KindInvalidInput, "session_id is required")
	ErrInvalidPaymentMeta   = errs.NewKind(errs.KindInvalidInput, "payment session metadata is invalid")
	ErrPaymentSessionMisuse = errs.NewKind(errs.KindInvalidInput, "payment session does not belong to this booking")

	ErrLocationUnavailable   = errs.NewKind(errs.KindConflict, "location is not accepting bookings")
	ErrCapacityExceeded      = errs.NewKind(errs.KindConflict, "no spots available for the requested time")
	ErrBookingCancelled      = errs.NewKind(errs.KindConflict, "booking is cancelled")
	ErrLocationInUse         = errs.NewKind(errs.KindConflict, "location still has bookings")
	ErrDuplicateBooking      = errs.NewKind(errs.KindConflict, "idempotency key reused with a different request")
	ErrIdempotencyInProgress = errs.NewKind(errs.KindConflict, "idempotency in progress")

	ErrBookingAccess = errs.NewKind(errs.KindForbidden, "not allowed to modify this booking")

	ErrPaymentProvider   = errs.NewKind(errs.KindExternalDependency, "payment provider error")
	ErrViolationNoInbox  = errs.NewKind(errs.KindExternalDependency, "violation inbox is not configured")
	ErrDatabaseOperation = errs.New("database operation failed")
)

// domainErr maps a domain rule violation onto the classified command error,
// keeping the original reachable through errors.Is.
func domainErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrInvalidTimeSlot):
		return errs.Mark(err, ErrInvalidTimeSlot)
	case errors.Is(err, booking.ErrLocationUnavailable):
		return errs.Mark(err, ErrLocationUnavailable)
	case errors.Is(err, booking.ErrBookingCancelled):
		return errs.Mark(err, ErrBookingCancelled)
	case errors.Is(err, booking.ErrSlotInPast),
		errors.Is(err, booking.ErrInvalidPlate),
		errors.Is(err, booking.ErrInvalidPhone),
		errors.Is(err, booking.ErrNegativeAmount),
		errors.Is(err, location.ErrInvalidAddress),
		errors.Is(err, location.ErrInvalidCoordinates),
		errors.Is(err, location.ErrInvalidRate),
		errors.Is(err, location.ErrInvalidCapacity),
		errors.Is(err, location.ErrInvalidCurrency),
		errors.Is(err, location.ErrInvalidStatus):
		return errs.Mark(err, ErrDomainValidation)
	default:
		return err
	}
}

// repoErr translates repository failures; notFound is returned for missing rows.
func repoErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case infra.IsKind(err, infra.KindNotFound):
		return notFound
	case infra.IsKind(err, infra.KindRetryable):
		// left unmarked so the unit of work can retry it
		return err
	default:
		return errs.Mark(err, ErrDatabaseOperation)
	}
}
