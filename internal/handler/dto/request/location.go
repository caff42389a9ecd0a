package request

import (
	"strings"
	"time"

	"smartpark/internal/domain/location"
)

type CreateLocationRequest struct {
	Address       string   `json:"address" binding:"required,max=500"`
	Lat           *float64 `json:"lat" binding:"required,latitude"`
	Lng           *float64 `json:"lng" binding:"required,longitude"`
	HourlyRate    int64    `json:"hourly_rate" binding:"required,gt=0"`
	Currency      string   `json:"currency,omitempty" binding:"omitempty,len=3,alpha"`
	NumberOfSpots int      `json:"number_of_spots" binding:"required,min=1"`
}

// ToDomain builds a new location; defaultCurrency applies when none was sent.
func (r CreateLocationRequest) ToDomain(defaultCurrency string, now time.Time) (*location.Location, error) {
	address, err := location.NewAddress(r.Address)
	if err != nil {
		return nil, err
	}
	if r.Lat == nil || r.Lng == nil {
		return nil, location.ErrInvalidCoordinates
	}
	coords, err := location.NewCoordinates(*r.Lat, *r.Lng)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(r.Currency)
	if code == "" {
		code = defaultCurrency
	}
	currency, err := location.NewCurrency(code)
	if err != nil {
		return nil, err
	}
	return location.NewLocation(address, coords, r.HourlyRate, currency, r.NumberOfSpots, now)
}

type UpdateLocationRequest struct {
	Address       *string  `json:"address,omitempty" binding:"omitempty,max=500"`
	Lat           *float64 `json:"lat,omitempty" binding:"omitempty,latitude"`
	Lng           *float64 `json:"lng,omitempty" binding:"omitempty,longitude"`
	HourlyRate    *int64   `json:"hourly_rate,omitempty" binding:"omitempty,gt=0"`
	NumberOfSpots *int     `json:"number_of_spots,omitempty" binding:"omitempty,min=1"`
	Status        *string  `json:"status,omitempty" binding:"omitempty,oneof=available not-available"`
}

func (r UpdateLocationRequest) ToParams() location.UpdateParams {
	return location.UpdateParams{
		Address:       r.Address,
		Lat:           r.Lat,
		Lng:           r.Lng,
		HourlyRate:    r.HourlyRate,
		NumberOfSpots: r.NumberOfSpots,
		Status:        r.Status,
	}
}

// WindowQuery is the optional occupancy window on location reads.
type WindowQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type NearbyQuery struct {
	Lat    *float64 `form:"lat" binding:"required,latitude"`
	Lng    *float64 `form:"lng" binding:"required,longitude"`
	Radius float64  `form:"radius" binding:"omitempty,gt=0,max=100000"`
	WindowQuery
}
