package response

import (
	"time"

	"smartpark/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type LocationResponse struct {
	ID             uuid.UUID `json:"id"`
	Address        string    `json:"address"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	HourlyRate     int64     `json:"hourlyRate"`
	Currency       string    `json:"currency"`
	NumberOfSpots  int       `json:"numberOfSpots"`
	BookedSpots    int       `json:"bookedSpots"`
	Status         string    `json:"status"`
	DistanceMeters *float64  `json:"distanceMeters,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type LocationCreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type LocationToggledResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func FromLocationView(v *queries.LocationView) *LocationResponse {
	var res LocationResponse
	// field names match one to one
	_ = copier.Copy(&res, v)
	return &res
}

func FromLocationViews(vs []*queries.LocationView) []*LocationResponse {
	res := make([]*LocationResponse, len(vs))
	for i, v := range vs {
		res[i] = FromLocationView(v)
	}
	return res
}
