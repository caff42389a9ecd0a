package request

import (
	"time"

	"github.com/google/uuid"
)

type ReportViolationRequest struct {
	VehiclePlate string     `json:"vehicle_plate" binding:"required,plate"`
	LocationID   uuid.UUID  `json:"location_id" binding:"required"`
	ObservedAt   *time.Time `json:"observed_at,omitempty"`
	Description  *string    `json:"description,omitempty" binding:"omitempty,max=1000"`
}
