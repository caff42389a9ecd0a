//go:build unit

package booking_test

import (
	"testing"
	"time"

	"smartpark/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, start, end time.Time) booking.TimeSlot {
	t.Helper()
	slot, err := booking.NewTimeSlot(start, end)
	require.NoError(t, err)
	return slot
}

func TestTimeSlot(t *testing.T) {
	base := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)

	t.Run("start must precede end", func(t *testing.T) {
		_, err := booking.NewTimeSlot(base, base)
		assert.ErrorIs(t, err, booking.ErrInvalidTimeSlot)

		_, err = booking.NewTimeSlot(base.Add(time.Hour), base)
		assert.ErrorIs(t, err, booking.ErrInvalidTimeSlot)
	})

	t.Run("overlap", func(t *testing.T) {
		tenToEleven := mustSlot(t, base, base.Add(time.Hour))

		cases := []struct {
			name  string
			other booking.TimeSlot
			want  bool
		}{
			{name: "touching after", other: mustSlot(t, base.Add(time.Hour), base.Add(2*time.Hour)), want: false},
			{name: "touching before", other: mustSlot(t, base.Add(-time.Hour), base), want: false},
			{name: "partial overlap", other: mustSlot(t, base.Add(30*time.Minute), base.Add(90*time.Minute)), want: true},
			{name: "contained", other: mustSlot(t, base.Add(15*time.Minute), base.Add(45*time.Minute)), want: true},
			{name: "containing", other: mustSlot(t, base.Add(-time.Hour), base.Add(2*time.Hour)), want: true},
			{name: "identical", other: tenToEleven, want: true},
			{name: "disjoint", other: mustSlot(t, base.Add(3*time.Hour), base.Add(4*time.Hour)), want: false},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				assert.Equal(t, c.want, tenToEleven.Overlaps(c.other))
				assert.Equal(t, c.want, c.other.Overlaps(tenToEleven), "overlap must be symmetric")
			})
		}
	})

	t.Run("date follows the calendar", func(t *testing.T) {
		ist := time.FixedZone("IST", 19800)
		lateEvening := mustSlot(t, time.Date(2030, 1, 2, 20, 0, 0, 0, time.UTC), time.Date(2030, 1, 2, 21, 0, 0, 0, time.UTC))

		assert.Equal(t, time.January, lateEvening.Date(ist).Month())
		assert.Equal(t, 3, lateEvening.Date(ist).Day())
		assert.Equal(t, 2, lateEvening.Date(time.UTC).Day())
	})
}

func TestAvailability(t *testing.T) {
	base := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	slot := mustSlot(t, base, base.Add(time.Hour))

	t.Run("count equal to capacity is unavailable", func(t *testing.T) {
		assert.True(t, booking.IsAvailable(0, 1))
		assert.False(t, booking.IsAvailable(1, 1))
		assert.False(t, booking.IsAvailable(2, 1))
		assert.True(t, booking.IsAvailable(2, 3))
	})

	t.Run("counts only overlapping slots", func(t *testing.T) {
		others := []booking.TimeSlot{
			mustSlot(t, base.Add(-time.Hour), base),
			mustSlot(t, base.Add(time.Hour), base.Add(2*time.Hour)),
			mustSlot(t, base.Add(30*time.Minute), base.Add(2*time.Hour)),
			mustSlot(t, base.Add(-time.Hour), base.Add(time.Minute)),
		}

		assert.Equal(t, 2, booking.CountOverlapping(slot, others))
	})

	t.Run("remaining never goes negative", func(t *testing.T) {
		assert.Equal(t, 2, booking.Availability{Capacity: 3, Overlapping: 1}.Remaining())
		assert.Equal(t, 0, booking.Availability{Capacity: 1, Overlapping: 4}.Remaining())
		assert.False(t, booking.Availability{Capacity: 1, Overlapping: 1}.IsAvailable())
	})
}
