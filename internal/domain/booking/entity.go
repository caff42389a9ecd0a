package booking

import (
	"errors"
	"time"

	"smartpark/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeSlot     = errors.New("start time must be before end time")
	ErrSlotInPast          = errors.New("start time cannot be in the past")
	ErrNegativeAmount      = errors.New("amount cannot be negative")
	ErrInvalidStatus       = errors.New("invalid booking status")
	ErrInvalidPlate        = errors.New("invalid vehicle plate")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrNotPending          = errors.New("booking is not pending")
	ErrBookingCancelled    = errors.New("booking is cancelled")
	ErrLocationUnavailable = errors.New("location is not accepting bookings")
)

// LocationSpec is the part of a parking location a booking depends on.
type LocationSpec struct {
	ID         uuid.UUID
	HourlyRate Money
	Capacity   int
	Bookable   bool
}

type Services struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
	// Calendar decides which day a booking belongs to.
	Calendar *time.Location
}

type Booking struct {
	id               uuid.UUID
	locationID       uuid.UUID
	userID           uuid.UUID
	bookingDate      time.Time
	slot             TimeSlot
	plate            Plate
	phone            Phone
	contactEmail     string
	status           Status
	totalAmount      Money
	paymentSessionID string
	createdAt        time.Time
	updatedAt        time.Time
}

func NewBooking(
	services *Services,
	loc LocationSpec,
	userID uuid.UUID,
	slot TimeSlot,
	plate Plate,
	phone Phone,
	contactEmail string,
) (*Booking, error) {
	now := services.Clock.Now()
	if slot.StartsBefore(now) {
		return nil, ErrSlotInPast
	}
	if !loc.Bookable {
		return nil, ErrLocationUnavailable
	}

	return &Booking{
		id:           uuid.New(),
		locationID:   loc.ID,
		userID:       userID,
		bookingDate:  slot.Date(services.calendar()),
		slot:         slot,
		plate:        plate,
		phone:        phone,
		contactEmail: contactEmail,
		status:       StatusPending,
		totalAmount:  services.PriceCalculator.ComputePrice(slot, loc.HourlyRate),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructBooking(
	id, locationID, userID uuid.UUID,
	bookingDate time.Time,
	slot TimeSlot,
	plate Plate,
	phone Phone,
	contactEmail string,
	status Status,
	totalAmount Money,
	paymentSessionID string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		locationID:       locationID,
		userID:           userID,
		bookingDate:      bookingDate,
		slot:             slot,
		plate:            plate,
		phone:            phone,
		contactEmail:     contactEmail,
		status:           status,
		totalAmount:      totalAmount,
		paymentSessionID: paymentSessionID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// HoldsCapacity reports whether the booking counts against its location.
// Pending bookings created before pendingCutoff are treated as abandoned.
func (b *Booking) HoldsCapacity(pendingCutoff time.Time) bool {
	switch b.status {
	case StatusBooked:
		return true
	case StatusPending:
		return !b.createdAt.Before(pendingCutoff)
	default:
		return false
	}
}

func (b *Booking) IsExpired(pendingCutoff time.Time) bool {
	return b.status == StatusPending && b.createdAt.Before(pendingCutoff)
}

func (b *Booking) IsCancelled() bool {
	return b.status == StatusCancelled
}

func (b *Booking) IsPending() bool {
	return b.status == StatusPending
}

// AmountPaid is what the customer has been charged so far. A pending booking
// has paid nothing, whatever its quoted total.
func (b *Booking) AmountPaid() Money {
	if b.status != StatusBooked {
		return Money{}
	}
	return b.totalAmount
}

// Confirm records a captured payment for a pending booking.
func (b *Booking) Confirm(sessionID string, captured Money, now time.Time) error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.status = StatusBooked
	b.paymentSessionID = sessionID
	b.totalAmount = captured
	b.updatedAt = now
	return nil
}

// Cancel returns false when the booking was already cancelled.
func (b *Booking) Cancel(now time.Time) bool {
	if b.status == StatusCancelled {
		return false
	}
	b.status = StatusCancelled
	b.totalAmount = Money{}
	b.updatedAt = now
	return true
}

// QuoteEdit prices slot at hourlyRate against what has already been paid.
func (b *Booking) QuoteEdit(services *Services, slot TimeSlot, hourlyRate Money) (EditQuote, error) {
	if b.status == StatusCancelled {
		return EditQuote{}, ErrBookingCancelled
	}
	if slot.StartsBefore(services.Clock.Now()) {
		return EditQuote{}, ErrSlotInPast
	}
	newTotal := services.PriceCalculator.ComputePrice(slot, hourlyRate)
	return EditQuote{
		Slot:        slot,
		BookingDate: slot.Date(services.calendar()),
		NewTotal:    newTotal,
		Difference:  newTotal.Diff(b.AmountPaid()),
	}, nil
}

// Reschedule applies a free edit. The status is left as is.
func (b *Booking) Reschedule(quote EditQuote, now time.Time) error {
	if b.status == StatusCancelled {
		return ErrBookingCancelled
	}
	b.bookingDate = quote.BookingDate
	b.slot = quote.Slot
	b.totalAmount = quote.NewTotal
	b.updatedAt = now
	return nil
}

// ApplyPaidEdit overwrites the schedule with what the customer paid for and
// marks the booking as booked under the new session.
func (b *Booking) ApplyPaidEdit(bookingDate time.Time, slot TimeSlot, total Money, sessionID string, now time.Time) {
	b.bookingDate = bookingDate
	b.slot = slot
	b.totalAmount = total
	b.status = StatusBooked
	b.paymentSessionID = sessionID
	b.updatedAt = now
}

func (b *Booking) AttachPaymentSession(sessionID string, now time.Time) {
	b.paymentSessionID = sessionID
	b.updatedAt = now
}

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) LocationID() uuid.UUID    { return b.locationID }
func (b *Booking) UserID() uuid.UUID        { return b.userID }
func (b *Booking) BookingDate() time.Time   { return b.bookingDate }
func (b *Booking) Slot() TimeSlot           { return b.slot }
func (b *Booking) Plate() Plate             { return b.plate }
func (b *Booking) Phone() Phone             { return b.phone }
func (b *Booking) ContactEmail() string     { return b.contactEmail }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) TotalAmount() Money       { return b.totalAmount }
func (b *Booking) PaymentSessionID() string { return b.paymentSessionID }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

func (s *Services) calendar() *time.Location {
	if s.Calendar == nil {
		return time.UTC
	}
	return s.Calendar
}
