//go:build unit || e2e

package builder

import (
	"time"

	"smartpark/internal/domain/location"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/usecase/queries"

	"github.com/google/uuid"
)

type LocationBuilder struct {
	ID            uuid.UUID
	Address       string
	Lat           float64
	Lng           float64
	HourlyRate    int64
	Currency      string
	NumberOfSpots int
	Status        string
	BookedSpots   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewLocationBuilder() *LocationBuilder {
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	return &LocationBuilder{
		ID:            uuid.New(),
		Address:       "12 MG Road, Bengaluru",
		Lat:           12.9716,
		Lng:           77.5946,
		HourlyRate:    6000,
		Currency:      "inr",
		NumberOfSpots: 1,
		Status:        string(location.StatusAvailable),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (l *LocationBuilder) With(mutate func(*LocationBuilder)) *LocationBuilder {
	mutate(l)
	return l
}

// BuildDomain validates through the constructor, so the ID is generated.
func (l *LocationBuilder) BuildDomain() (*location.Location, error) {
	address, err := location.NewAddress(l.Address)
	if err != nil {
		return nil, err
	}
	coords, err := location.NewCoordinates(l.Lat, l.Lng)
	if err != nil {
		return nil, err
	}
	currency, err := location.NewCurrency(l.Currency)
	if err != nil {
		return nil, err
	}
	return location.NewLocation(address, coords, l.HourlyRate, currency, l.NumberOfSpots, l.CreatedAt)
}

// BuildReconstructed keeps ID and Status as configured.
func (l *LocationBuilder) BuildReconstructed() *location.Location {
	address, _ := location.NewAddress(l.Address)
	coords, _ := location.NewCoordinates(l.Lat, l.Lng)
	currency, _ := location.NewCurrency(l.Currency)
	return location.ReconstructLocation(
		l.ID, address, coords, l.HourlyRate, currency, l.NumberOfSpots,
		location.Status(l.Status), l.CreatedAt, l.UpdatedAt,
	)
}

func (l *LocationBuilder) BuildCreateRequestDTO() reqdto.CreateLocationRequest {
	return reqdto.CreateLocationRequest{
		Address:       l.Address,
		Lat:           &l.Lat,
		Lng:           &l.Lng,
		HourlyRate:    l.HourlyRate,
		Currency:      l.Currency,
		NumberOfSpots: l.NumberOfSpots,
	}
}

func (l *LocationBuilder) BuildView() *queries.LocationView {
	return &queries.LocationView{
		ID:            l.ID,
		Address:       l.Address,
		Lat:           l.Lat,
		Lng:           l.Lng,
		HourlyRate:    l.HourlyRate,
		Currency:      l.Currency,
		NumberOfSpots: l.NumberOfSpots,
		BookedSpots:   l.BookedSpots,
		Status:        location.DeriveStatus(location.Status(l.Status), l.BookedSpots, l.NumberOfSpots).String(),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (l *LocationBuilder) WithID(id uuid.UUID) *LocationBuilder {
	l.ID = id
	return l
}

func (l *LocationBuilder) WithCapacity(spots int) *LocationBuilder {
	l.NumberOfSpots = spots
	return l
}

func (l *LocationBuilder) WithHourlyRate(rate int64) *LocationBuilder {
	l.HourlyRate = rate
	return l
}

func (l *LocationBuilder) WithStatus(status location.Status) *LocationBuilder {
	l.Status = string(status)
	return l
}

func (l *LocationBuilder) WithBookedSpots(n int) *LocationBuilder {
	l.BookedSpots = n
	return l
}

func (l *LocationBuilder) AsUnavailable() *LocationBuilder {
	l.Status = string(location.StatusNotAvailable)
	return l
}
