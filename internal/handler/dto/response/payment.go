package response

import (
	"smartpark/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReconcileResponse struct {
	SessionID string    `json:"sessionId"`
	BookingID uuid.UUID `json:"bookingId"`
	Outcome   string    `json:"outcome"`
}

func FromReconcileResult(r *commands.ReconcileResult) *ReconcileResponse {
	return &ReconcileResponse{
		SessionID: r.SessionID,
		BookingID: r.BookingID,
		Outcome:   string(r.Outcome),
	}
}
