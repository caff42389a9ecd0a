//go:build unit

package booking_test

import (
	"testing"
	"time"

	"smartpark/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePrice(t *testing.T) {
	start := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		duration time.Duration
		rate     int64
		want     int64
	}{
		{name: "whole hours", duration: 2 * time.Hour, rate: 6000, want: 12000},
		{name: "ninety minutes", duration: 90 * time.Minute, rate: 6000, want: 9000},
		{name: "rounds up past the hour", duration: 61 * time.Minute, rate: 100, want: 102},
		{name: "one millisecond is charged", duration: time.Millisecond, rate: 100, want: 1},
		{name: "zero length", duration: 0, rate: 6000, want: 0},
		{name: "inverted interval", duration: -time.Hour, rate: 6000, want: 0},
		{name: "zero rate", duration: time.Hour, rate: 0, want: 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := booking.ComputePrice(start, start.Add(c.duration), c.rate)
			assert.Equal(t, c.want, got)
		})
	}

	t.Run("monotone in duration", func(t *testing.T) {
		prev := int64(0)
		for minutes := 0; minutes <= 600; minutes++ {
			got := booking.ComputePrice(start, start.Add(time.Duration(minutes)*time.Minute), 137)
			require.GreaterOrEqual(t, got, prev, "minutes=%d", minutes)
			require.GreaterOrEqual(t, got, int64(0))
			prev = got
		}
	})

	t.Run("calculator wraps the same rule", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(start, start.Add(61*time.Minute))
		require.NoError(t, err)

		got := booking.NewDefaultPriceCalculator().ComputePrice(slot, booking.MoneyOf(100))
		assert.Equal(t, int64(102), got.Amount())
	})
}
