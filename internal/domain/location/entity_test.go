//go:build unit

package location_test

import (
	"testing"
	"time"

	"smartpark/internal/domain/location"
	"smartpark/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.LocationBuilder)
	errIs  error
}

func TestNewLocation(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewLocationBuilder().BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, location.StatusAvailable, actual.Status())
		assert.True(t, actual.IsBookable())
		assert.Equal(t, "inr", actual.Currency().String())
		assert.Equal(t, int64(6000), actual.HourlyRate())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "blank address", mutate: func(b *builder.LocationBuilder) { b.Address = "  " }, errIs: location.ErrInvalidAddress},
			{name: "latitude out of range", mutate: func(b *builder.LocationBuilder) { b.Lat = 91 }, errIs: location.ErrInvalidCoordinates},
			{name: "longitude out of range", mutate: func(b *builder.LocationBuilder) { b.Lng = -181 }, errIs: location.ErrInvalidCoordinates},
			{name: "zero rate", mutate: func(b *builder.LocationBuilder) { b.HourlyRate = 0 }, errIs: location.ErrInvalidRate},
			{name: "no spots", mutate: func(b *builder.LocationBuilder) { b.NumberOfSpots = 0 }, errIs: location.ErrInvalidCapacity},
			{name: "bad currency", mutate: func(b *builder.LocationBuilder) { b.Currency = "rupees" }, errIs: location.ErrInvalidCurrency},
			{name: "upper case currency", mutate: func(b *builder.LocationBuilder) { b.Currency = "USD" }},
		})
	})
}

func TestLocationMutations(t *testing.T) {
	now := time.Date(2030, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("toggle flips availability", func(t *testing.T) {
		loc := builder.NewLocationBuilder().BuildReconstructed()

		assert.Equal(t, location.StatusNotAvailable, loc.Toggle(now))
		assert.False(t, loc.IsBookable())
		assert.Equal(t, now, loc.UpdatedAt())
		assert.Equal(t, location.StatusAvailable, loc.Toggle(now))
	})

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		loc := builder.NewLocationBuilder().BuildReconstructed()
		rate := int64(8000)
		spots := 4

		require.NoError(t, loc.Update(location.UpdateParams{HourlyRate: &rate, NumberOfSpots: &spots}, now))
		assert.Equal(t, rate, loc.HourlyRate())
		assert.Equal(t, spots, loc.NumberOfSpots())
		assert.Equal(t, "12 MG Road, Bengaluru", loc.Address().String())
		assert.Equal(t, location.StatusAvailable, loc.Status())
	})

	t.Run("update rejects derived status", func(t *testing.T) {
		loc := builder.NewLocationBuilder().BuildReconstructed()
		full := string(location.StatusFull)

		err := loc.Update(location.UpdateParams{Status: &full}, now)
		assert.ErrorIs(t, err, location.ErrInvalidStatus)
		assert.Equal(t, location.StatusAvailable, loc.Status())
	})
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name     string
		stored   location.Status
		occupied int
		capacity int
		want     location.Status
	}{
		{name: "free spots", stored: location.StatusAvailable, occupied: 1, capacity: 2, want: location.StatusAvailable},
		{name: "occupancy reaches capacity", stored: location.StatusAvailable, occupied: 2, capacity: 2, want: location.StatusFull},
		{name: "switched off stays off", stored: location.StatusNotAvailable, occupied: 2, capacity: 2, want: location.StatusNotAvailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, location.DeriveStatus(c.stored, c.occupied, c.capacity))
		})
	}
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewLocationBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
