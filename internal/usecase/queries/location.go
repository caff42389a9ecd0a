package queries

import (
	"context"
	"time"

	"smartpark/internal/domain/location"
	"smartpark/internal/infra"
	"smartpark/internal/pkg/clock"

	"github.com/google/uuid"
)

// defaultWindow is used when a caller asks for occupancy without a window.
const defaultWindow = time.Hour

type LocationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID, window *TimeWindow) (*LocationView, error)
	List(ctx context.Context, window *TimeWindow) ([]*LocationView, error)
	SearchNearby(ctx context.Context, search NearbySearch) ([]*LocationView, error)
}

type LocationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LocationView, error)
	List(ctx context.Context) ([]*LocationView, error)
	// FindNearby orders by great-circle distance and sets DistanceMeters.
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*LocationView, error)
	CountOccupancy(ctx context.Context, ids []uuid.UUID, window TimeWindow, pendingCutoff time.Time) (map[uuid.UUID]int, error)
}

type locationQueriesImpl struct {
	store         LocationReadStore
	clock         clock.Clock
	pendingTTL    time.Duration
	defaultRadius float64
}

func NewLocationQueries(store LocationReadStore, clk clock.Clock, pendingTTL time.Duration, defaultRadius float64) LocationQueries {
	return &locationQueriesImpl{
		store:         store,
		clock:         clk,
		pendingTTL:    pendingTTL,
		defaultRadius: defaultRadius,
	}
}

func (q *locationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID, window *TimeWindow) (*LocationView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	if err := q.withOccupancy(ctx, []*LocationView{view}, window); err != nil {
		return nil, err
	}
	return view, nil
}

func (q *locationQueriesImpl) List(ctx context.Context, window *TimeWindow) ([]*LocationView, error) {
	views, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := q.withOccupancy(ctx, views, window); err != nil {
		return nil, err
	}
	return views, nil
}

func (q *locationQueriesImpl) SearchNearby(ctx context.Context, search NearbySearch) ([]*LocationView, error) {
	radius := search.RadiusMeters
	if radius <= 0 {
		radius = q.defaultRadius
	}

	views, err := q.store.FindNearby(ctx, search.Lat, search.Lng, radius)
	if err != nil {
		return nil, err
	}
	if err := q.withOccupancy(ctx, views, search.Window); err != nil {
		return nil, err
	}
	return views, nil
}

// withOccupancy fills BookedSpots and derives the FULL status for the window.
func (q *locationQueriesImpl) withOccupancy(ctx context.Context, views []*LocationView, window *TimeWindow) error {
	if window != nil {
		if err := window.Validate(); err != nil {
			return err
		}
	}
	if len(views) == 0 {
		return nil
	}

	now := q.clock.Now()
	w := TimeWindow{From: now, To: now.Add(defaultWindow)}
	if window != nil {
		w = *window
	}

	ids := make([]uuid.UUID, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}

	occupancy, err := q.store.CountOccupancy(ctx, ids, w, now.Add(-q.pendingTTL))
	if err != nil {
		return err
	}

	for _, v := range views {
		v.BookedSpots = occupancy[v.ID]
		v.Status = location.DeriveStatus(location.Status(v.Status), v.BookedSpots, v.NumberOfSpots).String()
	}
	return nil
}
