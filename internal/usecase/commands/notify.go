package commands

import (
	"fmt"
	"strings"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/location"
	"smartpark/internal/usecase/outbox"
)

const (
	emailDateLayout = "Jan 02, 2006"
	emailTimeLayout = "03:04 PM"
)

func bookingEmail(tmpl outbox.Template, b *booking.Booking, loc *location.Location, calendar *time.Location) outbox.EmailMessage {
	start := b.Slot().Start().In(calendar)
	end := b.Slot().End().In(calendar)
	return outbox.EmailMessage{
		To:       b.ContactEmail(),
		Template: tmpl,
		Data: map[string]string{
			"booking_id": b.ID().String(),
			"date":       start.Format(emailDateLayout),
			"arrival":    start.Format(emailTimeLayout),
			"leaving":    end.Format(emailTimeLayout),
			"plate":      strings.ToUpper(b.Plate().String()),
			"address":    loc.Address().String(),
			"amount":     formatAmount(b.TotalAmount().Amount(), loc.Currency().String()),
		},
	}
}

// formatAmount renders minor units with two decimals, e.g. "INR 90.00".
func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", strings.ToUpper(currency), minor/100, minor%100)
}

func describeSlot(slot booking.TimeSlot, calendar *time.Location) string {
	start := slot.Start().In(calendar)
	end := slot.End().In(calendar)
	return fmt.Sprintf("%s, %s to %s",
		start.Format(emailDateLayout), start.Format(emailTimeLayout), end.Format(emailTimeLayout))
}
