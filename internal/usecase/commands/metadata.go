package commands

import (
	"strconv"
	"time"

	"smartpark/internal/domain/booking"

	"github.com/google/uuid"
)

const (
	metaBookingID      = "bookingid"
	metaIsEdit         = "isEdit"
	metaEditBookingID  = "bookingId"
	metaNewDate        = "newDateISO"
	metaNewStartTime   = "newStartTimeISO"
	metaNewEndTime     = "newEndTimeISO"
	metaNewTotalAmount = "newTotalAmount"
)

func newBookingMetadata(bookingID uuid.UUID) map[string]string {
	return map[string]string{metaBookingID: bookingID.String()}
}

func editMetadata(bookingID uuid.UUID, quote booking.EditQuote) map[string]string {
	return map[string]string{
		metaIsEdit:         "true",
		metaEditBookingID:  bookingID.String(),
		metaNewDate:        quote.BookingDate.Format(time.DateOnly),
		metaNewStartTime:   quote.Slot.Start().UTC().Format(time.RFC3339),
		metaNewEndTime:     quote.Slot.End().UTC().Format(time.RFC3339),
		metaNewTotalAmount: strconv.FormatInt(quote.NewTotal.Amount(), 10),
	}
}

func isEditMetadata(meta map[string]string) bool {
	return meta[metaIsEdit] == "true"
}

// metadataBookingID reads the booking id under whichever key the session purpose uses.
func metadataBookingID(meta map[string]string) (uuid.UUID, error) {
	key := metaBookingID
	if isEditMetadata(meta) {
		key = metaEditBookingID
	}
	id, err := uuid.Parse(meta[key])
	if err != nil {
		return uuid.Nil, ErrInvalidPaymentMeta
	}
	return id, nil
}

type editTerms struct {
	BookingDate time.Time
	Slot        booking.TimeSlot
	Total       booking.Money
}

func parseEditMetadata(meta map[string]string, calendar *time.Location) (editTerms, error) {
	date, err := time.ParseInLocation(time.DateOnly, meta[metaNewDate], calendar)
	if err != nil {
		return editTerms{}, ErrInvalidPaymentMeta
	}
	start, err := time.Parse(time.RFC3339, meta[metaNewStartTime])
	if err != nil {
		return editTerms{}, ErrInvalidPaymentMeta
	}
	end, err := time.Parse(time.RFC3339, meta[metaNewEndTime])
	if err != nil {
		return editTerms{}, ErrInvalidPaymentMeta
	}
	slot, err := booking.NewTimeSlot(start, end)
	if err != nil {
		return editTerms{}, ErrInvalidPaymentMeta
	}
	amount, err := strconv.ParseInt(meta[metaNewTotalAmount], 10, 64)
	if err != nil {
		return editTerms{}, ErrInvalidPaymentMeta
	}
	total, err := booking.NewMoney(amount)
	if err != nil {
		return editTerms{}, ErrInvalidPaymentMeta
	}
	return editTerms{BookingDate: date, Slot: slot, Total: total}, nil
}
