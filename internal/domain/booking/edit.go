package booking

import "time"

// EditQuote is the priced outcome of moving a booking to a new slot.
type EditQuote struct {
	Slot        TimeSlot
	BookingDate time.Time
	NewTotal    Money
	// Difference is NewTotal minus the amount already on the booking.
	Difference int64
}

// RequiresPayment is true when the new slot costs more than what was paid.
func (q EditQuote) RequiresPayment() bool {
	return q.Difference > 0
}

// AmountDue is the extra charge for a paid edit, zero otherwise.
func (q EditQuote) AmountDue() Money {
	if q.Difference <= 0 {
		return Money{}
	}
	return MoneyOf(q.Difference)
}
