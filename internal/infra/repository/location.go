package repository

import (
	"context"

	"smartpark/internal/domain/location"
	"smartpark/internal/infra"
	"smartpark/internal/infra/db"
	"smartpark/internal/infra/repository/converter"

	"github.com/google/uuid"
)

const (
	insertLocationSQL = `INSERT INTO parking_locations (` + converter.LocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	selectLocationSQL = `SELECT ` + converter.LocationColumns + ` FROM parking_locations WHERE id = $1`

	lockLocationSQL = selectLocationSQL + ` FOR UPDATE`

	updateLocationSQL = `UPDATE parking_locations
		SET address = $2, lat = $3, lng = $4, hourly_rate = $5, currency = $6,
		    number_of_spots = $7, status = $8, updated_at = $9
		WHERE id = $1`

	deleteLocationSQL = `DELETE FROM parking_locations WHERE id = $1`
)

type LocationRepository struct{}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{}
}

func (r *LocationRepository) Create(ctx context.Context, tx db.DBTX, loc *location.Location) error {
	if _, err := tx.Exec(ctx, insertLocationSQL, converter.LocationToArgs(loc)...); err != nil {
		return infra.WrapRepoErr("failed to create location", err)
	}
	return nil
}

func (r *LocationRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*location.Location, error) {
	return r.scanOne(ctx, tx, selectLocationSQL, id)
}

func (r *LocationRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*location.Location, error) {
	return r.scanOne(ctx, tx, lockLocationSQL, id)
}

func (r *LocationRepository) Update(ctx context.Context, tx db.DBTX, loc *location.Location) error {
	args := converter.LocationToArgs(loc)
	// created_at is immutable
	tag, err := tx.Exec(ctx, updateLocationSQL, append(args[:8:8], loc.UpdatedAt())...)
	if err != nil {
		return infra.WrapRepoErr("failed to update location", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "location not found")
	}
	return nil
}

func (r *LocationRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, deleteLocationSQL, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete location", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "location not found")
	}
	return nil
}

func (r *LocationRepository) scanOne(ctx context.Context, tx db.DBTX, query string, id uuid.UUID) (*location.Location, error) {
	var row converter.LocationRow
	if err := tx.QueryRow(ctx, query, id).Scan(row.ScanTargets()...); err != nil {
		return nil, infra.WrapRepoErr("failed to load location", err)
	}

	loc, err := converter.LocationToDomain(row)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid location row", err)
	}
	return loc, nil
}
