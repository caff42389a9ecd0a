package location

import (
	"time"

	"smartpark/internal/pkg/patch"

	"github.com/google/uuid"
)

type Location struct {
	id            uuid.UUID
	address       Address
	coordinates   Coordinates
	hourlyRate    int64
	currency      Currency
	numberOfSpots int
	status        Status
	createdAt     time.Time
	updatedAt     time.Time
}

// UpdateParams carries a partial update; nil fields keep their value.
type UpdateParams struct {
	Address       *string
	Lat           *float64
	Lng           *float64
	HourlyRate    *int64
	NumberOfSpots *int
	Status        *string
}

func NewLocation(address Address, coords Coordinates, hourlyRate int64, currency Currency, numberOfSpots int, now time.Time) (*Location, error) {
	if hourlyRate <= 0 {
		return nil, ErrInvalidRate
	}
	if numberOfSpots < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Location{
		id:            uuid.New(),
		address:       address,
		coordinates:   coords,
		hourlyRate:    hourlyRate,
		currency:      currency,
		numberOfSpots: numberOfSpots,
		status:        StatusAvailable,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructLocation(
	id uuid.UUID,
	address Address,
	coords Coordinates,
	hourlyRate int64,
	currency Currency,
	numberOfSpots int,
	status Status,
	createdAt, updatedAt time.Time,
) *Location {
	return &Location{
		id:            id,
		address:       address,
		coordinates:   coords,
		hourlyRate:    hourlyRate,
		currency:      currency,
		numberOfSpots: numberOfSpots,
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Toggle flips between available and not-available.
func (l *Location) Toggle(now time.Time) Status {
	if l.status == StatusAvailable {
		l.status = StatusNotAvailable
	} else {
		l.status = StatusAvailable
	}
	l.updatedAt = now
	return l.status
}

func (l *Location) Update(p UpdateParams, now time.Time) error {
	address, err := NewAddress(patch.Coalesce(p.Address, l.address.String()))
	if err != nil {
		return err
	}
	coords, err := NewCoordinates(patch.Coalesce(p.Lat, l.coordinates.Lat()), patch.Coalesce(p.Lng, l.coordinates.Lng()))
	if err != nil {
		return err
	}
	rate := patch.Coalesce(p.HourlyRate, l.hourlyRate)
	if rate <= 0 {
		return ErrInvalidRate
	}
	spots := patch.Coalesce(p.NumberOfSpots, l.numberOfSpots)
	if spots < 1 {
		return ErrInvalidCapacity
	}
	status, err := NewStatus(patch.Coalesce(p.Status, l.status.String()))
	if err != nil {
		return err
	}

	l.address = address
	l.coordinates = coords
	l.hourlyRate = rate
	l.numberOfSpots = spots
	l.status = status
	l.updatedAt = now
	return nil
}

func (l *Location) IsBookable() bool {
	return l.status == StatusAvailable
}

// EffectiveStatus derives the status shown for a window with occupied spots taken.
func (l *Location) EffectiveStatus(occupied int) Status {
	return DeriveStatus(l.status, occupied, l.numberOfSpots)
}

func DeriveStatus(stored Status, occupied, capacity int) Status {
	if stored != StatusAvailable {
		return stored
	}
	if occupied >= capacity {
		return StatusFull
	}
	return StatusAvailable
}

func (l *Location) ID() uuid.UUID            { return l.id }
func (l *Location) Address() Address         { return l.address }
func (l *Location) Coordinates() Coordinates { return l.coordinates }
func (l *Location) HourlyRate() int64        { return l.hourlyRate }
func (l *Location) Currency() Currency       { return l.currency }
func (l *Location) NumberOfSpots() int       { return l.numberOfSpots }
func (l *Location) Status() Status           { return l.status }
func (l *Location) CreatedAt() time.Time     { return l.createdAt }
func (l *Location) UpdatedAt() time.Time     { return l.updatedAt }
