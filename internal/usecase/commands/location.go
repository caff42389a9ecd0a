package commands

import (
	"context"

	"smartpark/internal/domain/location"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/infra"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/shared"

	"github.com/google/uuid"
)

type LocationCommands interface {
	CreateLocation(ctx context.Context, req reqdto.CreateLocationRequest) (uuid.UUID, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, req reqdto.UpdateLocationRequest) error
	ToggleLocation(ctx context.Context, id uuid.UUID) (location.Status, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
}

type locationUseCaseImpl struct {
	uow             shared.UnitOfWork
	cache           CacheInvalidator
	clock           clock.Clock
	defaultCurrency string
}

func NewLocationUseCase(uow shared.UnitOfWork, cache CacheInvalidator, clk clock.Clock, defaultCurrency string) LocationCommands {
	return &locationUseCaseImpl{
		uow:             uow,
		cache:           invalidatorOrNop(cache),
		clock:           clk,
		defaultCurrency: defaultCurrency,
	}
}

func (uc *locationUseCaseImpl) CreateLocation(ctx context.Context, req reqdto.CreateLocationRequest) (uuid.UUID, error) {
	loc, err := req.ToDomain(uc.defaultCurrency, uc.clock.Now())
	if err != nil {
		return uuid.Nil, domainErr(err)
	}

	err = uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return repoErr(tx.Locations().Create(ctx, tx.DB(), loc), ErrLocationNotFound)
	})
	if err != nil {
		return uuid.Nil, err
	}

	uc.cache.InvalidateLocations(ctx, loc.ID())
	return loc.ID(), nil
}

func (uc *locationUseCaseImpl) UpdateLocation(ctx context.Context, id uuid.UUID, req reqdto.UpdateLocationRequest) error {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		loc, err := tx.Locations().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return repoErr(err, ErrLocationNotFound)
		}
		if err := loc.Update(req.ToParams(), uc.clock.Now()); err != nil {
			return domainErr(err)
		}
		return repoErr(tx.Locations().Update(ctx, tx.DB(), loc), ErrLocationNotFound)
	})
	if err != nil {
		return err
	}

	uc.cache.InvalidateLocations(ctx, id)
	return nil
}

func (uc *locationUseCaseImpl) ToggleLocation(ctx context.Context, id uuid.UUID) (location.Status, error) {
	var status location.Status
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		loc, err := tx.Locations().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return repoErr(err, ErrLocationNotFound)
		}
		status = loc.Toggle(uc.clock.Now())
		return repoErr(tx.Locations().Update(ctx, tx.DB(), loc), ErrLocationNotFound)
	})
	if err != nil {
		return "", err
	}

	uc.cache.InvalidateLocations(ctx, id)
	return status, nil
}

func (uc *locationUseCaseImpl) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Locations().Delete(ctx, tx.DB(), id)
		if infra.IsKind(err, infra.KindForeignKeyViolated) {
			return errs.Mark(err, ErrLocationInUse)
		}
		return repoErr(err, ErrLocationNotFound)
	})
	if err != nil {
		return err
	}

	uc.cache.InvalidateLocations(ctx, id)
	return nil
}
