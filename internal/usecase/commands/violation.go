package commands

import (
	"context"
	"strings"
	"time"

	"smartpark/internal/domain/booking"
	"smartpark/internal/domain/user"
	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"
	"smartpark/internal/usecase/shared"
)

type ViolationCommands interface {
	ReportViolation(ctx context.Context, req reqdto.ReportViolationRequest, actor user.Actor) error
}

type violationUseCaseImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	settings Settings
}

func NewViolationUseCase(uow shared.UnitOfWork, clk clock.Clock, settings Settings) ViolationCommands {
	return &violationUseCaseImpl{uow: uow, clock: clk, settings: settings}
}

func (uc *violationUseCaseImpl) ReportViolation(ctx context.Context, req reqdto.ReportViolationRequest, actor user.Actor) error {
	if uc.settings.ViolationEmail == "" {
		return ErrViolationNoInbox
	}
	plate, err := booking.NewPlate(req.VehiclePlate)
	if err != nil {
		return domainErr(err)
	}

	now := uc.clock.Now()
	observedAt := now
	if req.ObservedAt != nil {
		observedAt = *req.ObservedAt
	}
	calendar := uc.settings.Calendar
	if calendar == nil {
		calendar = time.UTC
	}

	return uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		loc, err := tx.Locations().FindByID(ctx, tx.DB(), req.LocationID)
		if err != nil {
			return repoErr(err, ErrLocationNotFound)
		}

		local := observedAt.In(calendar)
		data := map[string]string{
			"plate":       plate.String(),
			"address":     loc.Address().String(),
			"location_id": loc.ID().String(),
			"date":        local.Format(emailDateLayout),
			"time":        local.Format(emailTimeLayout),
			"reported_by": actor.Email,
		}
		if req.Description != nil {
			data["description"] = strings.TrimSpace(*req.Description)
		}

		msg := outbox.EmailMessage{To: uc.settings.ViolationEmail, Template: outbox.TemplateViolationReported, Data: data}
		if err := outbox.EnqueueEmail(ctx, tx, msg, now); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		return nil
	})
}
