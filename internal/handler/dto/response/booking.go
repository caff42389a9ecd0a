package response

import (
	"time"

	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	LocationID       uuid.UUID `json:"locationId"`
	LocationAddress  string    `json:"locationAddress"`
	UserID           uuid.UUID `json:"userId"`
	BookingDate      string    `json:"bookingDate"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	VehiclePlate     string    `json:"vehiclePlate"`
	Phone            string    `json:"phone"`
	Status           string    `json:"status"`
	TotalAmount      int64     `json:"totalAmount"`
	Currency         string    `json:"currency"`
	PaymentSessionID *string   `json:"paymentSessionId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type BookingListResponse struct {
	Bookings   []*BookingResponse `json:"bookings"`
	NextCursor *string            `json:"nextCursor,omitempty"`
}

type BookingCreatedResponse struct {
	BookingID   uuid.UUID `json:"bookingId"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"totalAmount"`
	Currency    string    `json:"currency"`
	SessionID   string    `json:"sessionId,omitempty"`
	CheckoutURL string    `json:"url,omitempty"`
}

type BookingEditedResponse struct {
	// Code is 0 when the change was applied and 100 when payment is required.
	Code        int       `json:"code"`
	BookingID   uuid.UUID `json:"bookingId"`
	Outcome     string    `json:"outcome"`
	NewTotal    int64     `json:"newTotal"`
	AmountDue   int64     `json:"amountDue"`
	Currency    string    `json:"currency"`
	SessionID   string    `json:"sessionId,omitempty"`
	CheckoutURL string    `json:"url,omitempty"`
}

type BookingCancelledResponse struct {
	BookingID        uuid.UUID `json:"bookingId"`
	AlreadyCancelled bool      `json:"alreadyCancelled"`
}

type BookingDeletedResponse struct {
	BookingID        uuid.UUID `json:"bookingId"`
	ReleasedCapacity bool      `json:"releasedCapacity"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	var res BookingResponse
	_ = copier.Copy(&res, v)
	return &res
}

func FromBookingViews(vs []*queries.BookingView) []*BookingResponse {
	res := make([]*BookingResponse, len(vs))
	for i, v := range vs {
		res[i] = FromBookingView(v)
	}
	return res
}

func FromCreateBookingResult(r *commands.CreateBookingResult) *BookingCreatedResponse {
	return &BookingCreatedResponse{
		BookingID:   r.BookingID,
		Status:      r.Status.String(),
		TotalAmount: r.TotalAmount,
		Currency:    r.Currency,
		SessionID:   r.SessionID,
		CheckoutURL: r.CheckoutURL,
	}
}

func FromEditBookingResult(r *commands.EditBookingResult) *BookingEditedResponse {
	var res BookingEditedResponse
	_ = copier.Copy(&res, r)
	res.Code = r.Code()
	res.Outcome = string(r.Outcome)
	return &res
}
