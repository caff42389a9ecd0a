//go:build unit || e2e

package builder

import (
	"time"

	"smartpark/internal/domain/booking"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingNow is the instant every booking fixture is created at.
var BookingNow = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

type BookingBuilder struct {
	ID               uuid.UUID
	LocationID       uuid.UUID
	UserID           uuid.UUID
	StartTime        time.Time
	EndTime          time.Time
	Plate            string
	Phone            string
	ContactEmail     string
	Status           string
	TotalAmount      int64
	HourlyRate       int64
	Capacity         int
	Bookable         bool
	PaymentSessionID string
	Now              time.Time
	CreatedAt        time.Time
}

func NewBookingBuilder() *BookingBuilder {
	start := BookingNow.Add(24 * time.Hour)
	return &BookingBuilder{
		ID:           uuid.New(),
		LocationID:   uuid.New(),
		UserID:       uuid.New(),
		StartTime:    start,
		EndTime:      start.Add(90 * time.Minute),
		Plate:        "ka01ab1234",
		Phone:        "+91 98765-43210",
		ContactEmail: "driver@example.com",
		Status:       string(booking.StatusPending),
		TotalAmount:  9000,
		HourlyRate:   6000,
		Capacity:     1,
		Bookable:     true,
		Now:          BookingNow,
		CreatedAt:    BookingNow,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Services() *booking.Services {
	return &booking.Services{
		Clock:           clock.NewMockClock(b.Now),
		PriceCalculator: booking.NewDefaultPriceCalculator(),
		Calendar:        time.UTC,
	}
}

func (b *BookingBuilder) LocationSpec() booking.LocationSpec {
	return booking.LocationSpec{
		ID:         b.LocationID,
		HourlyRate: booking.MoneyOf(b.HourlyRate),
		Capacity:   b.Capacity,
		Bookable:   b.Bookable,
	}
}

// BuildDomain runs the full constructor, so the price is computed and the status is pending.
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	slot, err := booking.NewTimeSlot(b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	plate, err := booking.NewPlate(b.Plate)
	if err != nil {
		return nil, err
	}
	phone, err := booking.NewPhone(b.Phone)
	if err != nil {
		return nil, err
	}
	return booking.NewBooking(b.Services(), b.LocationSpec(), b.UserID, slot, plate, phone, b.ContactEmail)
}

// BuildReconstructed keeps every configured field, including status and amount.
func (b *BookingBuilder) BuildReconstructed() *booking.Booking {
	slot, _ := booking.NewTimeSlot(b.StartTime, b.EndTime)
	plate, _ := booking.NewPlate(b.Plate)
	phone, _ := booking.NewPhone(b.Phone)
	return booking.ReconstructBooking(
		b.ID, b.LocationID, b.UserID,
		slot.Date(time.UTC), slot, plate, phone, b.ContactEmail,
		booking.Status(b.Status), booking.MoneyOf(b.TotalAmount), b.PaymentSessionID,
		b.CreatedAt, b.CreatedAt,
	)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		LocationID:   b.LocationID,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		VehiclePlate: b.Plate,
		Phone:        b.Phone,
	}
}

func (b *BookingBuilder) BuildEditRequestDTO() reqdto.EditBookingRequest {
	return reqdto.EditBookingRequest{
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	view := &queries.BookingView{
		ID:              b.ID,
		LocationID:      b.LocationID,
		LocationAddress: "12 MG Road, Bengaluru",
		UserID:          b.UserID,
		BookingDate:     b.StartTime.UTC().Format(time.DateOnly),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		VehiclePlate:    booking.NormalizePlate(b.Plate),
		Phone:           booking.NormalizePhone(b.Phone),
		Status:          b.Status,
		TotalAmount:     b.TotalAmount,
		Currency:        "inr",
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
	if b.PaymentSessionID != "" {
		sid := b.PaymentSessionID
		view.PaymentSessionID = &sid
	}
	return view
}

func (b *BookingBuilder) WithLocationID(id uuid.UUID) *BookingBuilder {
	b.LocationID = id
	return b
}

func (b *BookingBuilder) WithUserID(id uuid.UUID) *BookingBuilder {
	b.UserID = id
	return b
}

func (b *BookingBuilder) WithSlot(start, end time.Time) *BookingBuilder {
	b.StartTime = start
	b.EndTime = end
	return b
}

func (b *BookingBuilder) WithStatus(status booking.Status) *BookingBuilder {
	b.Status = string(status)
	return b
}

func (b *BookingBuilder) WithTotalAmount(amount int64) *BookingBuilder {
	b.TotalAmount = amount
	return b
}

func (b *BookingBuilder) WithHourlyRate(rate int64) *BookingBuilder {
	b.HourlyRate = rate
	return b
}

func (b *BookingBuilder) WithCreatedAt(t time.Time) *BookingBuilder {
	b.CreatedAt = t
	return b
}

func (b *BookingBuilder) AsBooked(sessionID string) *BookingBuilder {
	b.Status = string(booking.StatusBooked)
	b.PaymentSessionID = sessionID
	return b
}

func (b *BookingBuilder) AsCancelled() *BookingBuilder {
	b.Status = string(booking.StatusCancelled)
	b.TotalAmount = 0
	return b
}
