//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"smartpark/internal/infra"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/queries"
	"smartpark/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocationStore struct {
	views     []*queries.LocationView
	occupancy map[uuid.UUID]int

	nearbyRadius float64
	window       queries.TimeWindow
	cutoff       time.Time
	counted      []uuid.UUID
}

func (f *fakeLocationStore) FindByID(_ context.Context, id uuid.UUID) (*queries.LocationView, error) {
	for _, v := range f.views {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "location not found")
}

func (f *fakeLocationStore) List(context.Context) ([]*queries.LocationView, error) {
	out := make([]*queries.LocationView, len(f.views))
	for i, v := range f.views {
		cp := *v
		out[i] = &cp
	}
	return out, nil
}

func (f *fakeLocationStore) FindNearby(ctx context.Context, _, _, radius float64) ([]*queries.LocationView, error) {
	f.nearbyRadius = radius
	return f.List(ctx)
}

func (f *fakeLocationStore) CountOccupancy(_ context.Context, ids []uuid.UUID, window queries.TimeWindow, cutoff time.Time) (map[uuid.UUID]int, error) {
	f.counted, f.window, f.cutoff = ids, window, cutoff
	return f.occupancy, nil
}

func TestLocationQueries(t *testing.T) {
	now := builder.BookingNow
	free := builder.NewLocationBuilder().WithCapacity(3).BuildView()
	full := builder.NewLocationBuilder().WithCapacity(2).BuildView()
	closed := builder.NewLocationBuilder().WithCapacity(2).AsUnavailable().BuildView()

	newQueries := func() (queries.LocationQueries, *fakeLocationStore) {
		store := &fakeLocationStore{
			views:     []*queries.LocationView{free, full, closed},
			occupancy: map[uuid.UUID]int{free.ID: 1, full.ID: 2, closed.ID: 2},
		}
		return queries.NewLocationQueries(store, clock.NewMockClock(now), 30*time.Minute, 5000), store
	}

	t.Run("list derives status for the next hour by default", func(t *testing.T) {
		q, store := newQueries()

		views, err := q.List(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, views, 3)

		assert.Equal(t, "available", views[0].Status)
		assert.Equal(t, 1, views[0].BookedSpots)
		assert.Equal(t, "full", views[1].Status)
		assert.Equal(t, "not-available", views[2].Status)

		assert.Equal(t, queries.TimeWindow{From: now, To: now.Add(time.Hour)}, store.window)
		assert.Equal(t, now.Add(-30*time.Minute), store.cutoff)
	})

	t.Run("explicit window", func(t *testing.T) {
		q, store := newQueries()
		window := &queries.TimeWindow{From: now.Add(48 * time.Hour), To: now.Add(50 * time.Hour)}

		_, err := q.GetByID(context.Background(), free.ID, window)
		require.NoError(t, err)
		assert.Equal(t, *window, store.window)
		assert.Equal(t, []uuid.UUID{free.ID}, store.counted)
	})

	t.Run("inverted window", func(t *testing.T) {
		q, _ := newQueries()
		_, err := q.List(context.Background(), &queries.TimeWindow{From: now, To: now})
		assert.True(t, errs.Is(err, queries.ErrInvalidWindow))
	})

	t.Run("unknown location", func(t *testing.T) {
		q, _ := newQueries()
		_, err := q.GetByID(context.Background(), uuid.New(), nil)
		assert.True(t, errs.Is(err, queries.ErrLocationNotFound))
	})

	t.Run("nearby falls back to the default radius", func(t *testing.T) {
		q, store := newQueries()

		_, err := q.SearchNearby(context.Background(), queries.NearbySearch{Lat: 12.9, Lng: 77.5})
		require.NoError(t, err)
		assert.InDelta(t, 5000, store.nearbyRadius, 0.001)

		_, err = q.SearchNearby(context.Background(), queries.NearbySearch{Lat: 12.9, Lng: 77.5, RadiusMeters: 750})
		require.NoError(t, err)
		assert.InDelta(t, 750, store.nearbyRadius, 0.001)
	})
}
