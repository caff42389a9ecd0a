package converter

import (
	"time"

	"smartpark/internal/domain/location"

	"github.com/google/uuid"
)

const LocationColumns = `id, address, lat, lng, hourly_rate, currency, number_of_spots, status, created_at, updated_at`

type LocationRow struct {
	ID            uuid.UUID
	Address       string
	Lat           float64
	Lng           float64
	HourlyRate    int64
	Currency      string
	NumberOfSpots int32
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *LocationRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.Address, &r.Lat, &r.Lng, &r.HourlyRate, &r.Currency,
		&r.NumberOfSpots, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	}
}

func LocationToDomain(r LocationRow) (*location.Location, error) {
	address, err := location.NewAddress(r.Address)
	if err != nil {
		return nil, err
	}
	coords, err := location.NewCoordinates(r.Lat, r.Lng)
	if err != nil {
		return nil, err
	}
	currency, err := location.NewCurrency(r.Currency)
	if err != nil {
		return nil, err
	}
	status, err := location.NewStatus(r.Status)
	if err != nil {
		return nil, err
	}

	return location.ReconstructLocation(
		r.ID, address, coords, r.HourlyRate, currency, int(r.NumberOfSpots),
		status, r.CreatedAt, r.UpdatedAt,
	), nil
}

func LocationToArgs(l *location.Location) []any {
	return []any{
		l.ID(),
		l.Address().String(),
		l.Coordinates().Lat(),
		l.Coordinates().Lng(),
		l.HourlyRate(),
		l.Currency().String(),
		int32(l.NumberOfSpots()), // #nosec G115 -- bounded by request validation
		l.Status().String(),
		l.CreatedAt(),
		l.UpdatedAt(),
	}
}
