package readstore

import (
	"context"
	"time"

	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/pkg/pgconv"
	"smartpark/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	locationViewColumns = `id, address, lat, lng, hourly_rate, currency, number_of_spots, status, created_at, updated_at`

	getLocationViewSQL = `SELECT ` + locationViewColumns + ` FROM parking_locations WHERE id = $1`

	listLocationViewsSQL = `SELECT ` + locationViewColumns + ` FROM parking_locations ORDER BY created_at DESC, id`

	// haversine on a 6371 km sphere; least() keeps rounding inside asin's domain
	findNearbySQL = `SELECT ` + locationViewColumns + `, distance_m FROM (
			SELECT ` + locationViewColumns + `,
			       6371000 * 2 * asin(least(1, sqrt(
			           power(sin(radians(lat - $1) / 2), 2) +
			           cos(radians($1)) * cos(radians(lat)) * power(sin(radians(lng - $2) / 2), 2)
			       ))) AS distance_m
			FROM parking_locations
		) l
		WHERE distance_m <= $3
		ORDER BY distance_m, id`

	countOccupancySQL = `SELECT location_id, count(*) FROM bookings
		WHERE location_id = ANY($1)
		  AND start_time < $3 AND $2 < end_time
		  AND (status = 'booked' OR (status = 'pending' AND created_at >= $4))
		GROUP BY location_id`
)

type LocationReadStore struct {
	db db.DBTX
}

func NewLocationReadStore(db db.DBTX) *LocationReadStore {
	return &LocationReadStore{db: db}
}

func (s *LocationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.LocationView, error) {
	view, err := scanLocationView(s.db.QueryRow(ctx, getLocationViewSQL, id), false)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find location by ID", err)
	}
	return view, nil
}

func (s *LocationReadStore) List(ctx context.Context) ([]*queries.LocationView, error) {
	rows, err := s.db.Query(ctx, listLocationViewsSQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list locations", err)
	}
	return collectLocationViews(rows, false)
}

func (s *LocationReadStore) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*queries.LocationView, error) {
	rows, err := s.db.Query(ctx, findNearbySQL, lat, lng, radiusMeters)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to search nearby locations", err)
	}
	return collectLocationViews(rows, true)
}

func (s *LocationReadStore) CountOccupancy(ctx context.Context, ids []uuid.UUID, window queries.TimeWindow, pendingCutoff time.Time) (map[uuid.UUID]int, error) {
	pgIDs := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		pgIDs[i] = pgconv.UUIDToPgtype(id)
	}

	rows, err := s.db.Query(ctx, countOccupancySQL, pgIDs, window.From, window.To, pendingCutoff)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count occupancy", err)
	}
	defer rows.Close()

	occupancy := make(map[uuid.UUID]int, len(ids))
	for rows.Next() {
		var (
			id    uuid.UUID
			count int64
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan occupancy", err)
		}
		occupancy[id] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read occupancy", err)
	}
	return occupancy, nil
}

func collectLocationViews(rows pgx.Rows, withDistance bool) ([]*queries.LocationView, error) {
	defer rows.Close()

	views := make([]*queries.LocationView, 0)
	for rows.Next() {
		view, err := scanLocationView(rows, withDistance)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan location", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read locations", err)
	}
	return views, nil
}

func scanLocationView(row pgx.Row, withDistance bool) (*queries.LocationView, error) {
	var (
		v        queries.LocationView
		spots    int32
		distance float64
	)
	dest := []any{&v.ID, &v.Address, &v.Lat, &v.Lng, &v.HourlyRate, &v.Currency, &spots, &v.Status, &v.CreatedAt, &v.UpdatedAt}
	if withDistance {
		dest = append(dest, &distance)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	v.NumberOfSpots = int(spots)
	if withDistance {
		v.DistanceMeters = &distance
	}
	return &v, nil
}
