package request

import (
	"time"

	"smartpark/internal/domain/booking"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	LocationID   uuid.UUID `json:"location_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	VehiclePlate string    `json:"vehicle_plate" binding:"required,plate"`
	Phone        string    `json:"phone" binding:"required,phone"`
}

// BookingInput is the validated form of a create request.
type BookingInput struct {
	Slot  booking.TimeSlot
	Plate booking.Plate
	Phone booking.Phone
}

func (r CreateBookingRequest) ToDomain() (BookingInput, error) {
	slot, err := booking.NewTimeSlot(r.StartTime, r.EndTime)
	if err != nil {
		return BookingInput{}, err
	}
	plate, err := booking.NewPlate(r.VehiclePlate)
	if err != nil {
		return BookingInput{}, err
	}
	phone, err := booking.NewPhone(r.Phone)
	if err != nil {
		return BookingInput{}, err
	}
	return BookingInput{Slot: slot, Plate: plate, Phone: phone}, nil
}

type EditBookingRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (r EditBookingRequest) ToDomain() (booking.TimeSlot, error) {
	return booking.NewTimeSlot(r.StartTime, r.EndTime)
}

type ListBookingsQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type OperatorBookingsQuery struct {
	Date       string `form:"date" binding:"required,datetime=2006-01-02"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending booked cancelled"`
}
