package booking

import "time"

const millisPerHour = int64(time.Hour / time.Millisecond)

type PriceCalculator interface {
	ComputePrice(slot TimeSlot, hourlyRate Money) Money
}

type DefaultPriceCalculator struct{}

func NewDefaultPriceCalculator() *DefaultPriceCalculator {
	return &DefaultPriceCalculator{}
}

func (pc *DefaultPriceCalculator) ComputePrice(slot TimeSlot, hourlyRate Money) Money {
	return MoneyOf(ComputePrice(slot.Start(), slot.End(), hourlyRate.Amount()))
}

// ComputePrice charges hourlyRate (smallest unit per hour) pro rata by the
// millisecond and rounds up to the next whole unit. An empty or inverted
// interval costs nothing.
func ComputePrice(start, end time.Time, hourlyRate int64) int64 {
	millis := end.Sub(start).Milliseconds()
	if millis <= 0 || hourlyRate <= 0 {
		return 0
	}

	total := millis * hourlyRate
	price := total / millisPerHour
	if total%millisPerHour != 0 {
		price++
	}
	return price
}
