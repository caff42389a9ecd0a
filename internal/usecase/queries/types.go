package queries

import (
	"time"

	"smartpark/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrLocationNotFound = errs.NewKind(errs.KindNotFound, "location not found")
	ErrBookingNotFound  = errs.NewKind(errs.KindNotFound, "booking not found")
	ErrBookingAccess    = errs.NewKind(errs.KindForbidden, "not allowed to view this booking")
	ErrInvalidWindow    = errs.NewKind(errs.KindInvalidInput, "window start must be before its end")
	ErrInvalidCursor    = errs.NewKind(errs.KindInvalidInput, "invalid cursor")
	ErrInvalidStatus    = errs.NewKind(errs.KindInvalidInput, "invalid booking status filter")
)

// LocationView is a parking location with occupancy for one query window.
type LocationView struct {
	ID             uuid.UUID `json:"id"`
	Address        string    `json:"address"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	HourlyRate     int64     `json:"hourly_rate"`
	Currency       string    `json:"currency"`
	NumberOfSpots  int       `json:"number_of_spots"`
	BookedSpots    int       `json:"booked_spots"`
	Status         string    `json:"status"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type BookingView struct {
	ID               uuid.UUID `json:"id"`
	LocationID       uuid.UUID `json:"location_id"`
	LocationAddress  string    `json:"location_address"`
	UserID           uuid.UUID `json:"user_id"`
	BookingDate      string    `json:"booking_date"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	VehiclePlate     string    `json:"vehicle_plate"`
	Phone            string    `json:"phone"`
	ContactEmail     string    `json:"contact_email,omitempty"`
	Status           string    `json:"status"`
	TotalAmount      int64     `json:"total_amount"`
	Currency         string    `json:"currency"`
	PaymentSessionID *string   `json:"payment_session_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TimeWindow is the half-open interval occupancy is counted for.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

func (w TimeWindow) Validate() error {
	if !w.From.Before(w.To) {
		return ErrInvalidWindow
	}
	return nil
}

type NearbySearch struct {
	Lat          float64
	Lng          float64
	RadiusMeters float64
	Window       *TimeWindow
}

// BookingFilter drives the operator listing. Date is a calendar day.
type BookingFilter struct {
	Date       time.Time
	LocationID *uuid.UUID
	Status     string
}
