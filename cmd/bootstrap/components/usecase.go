package components

import (
	"smartpark/internal/domain/booking"
	"smartpark/internal/pkg/clock"
	"smartpark/internal/pkg/config"
	"smartpark/internal/usecase"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/queries"
	"smartpark/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		booking.NewDefaultPriceCalculator,
		fx.As(new(booking.PriceCalculator)),
	),
	func(clock clock.Clock, calc booking.PriceCalculator, settings commands.Settings) *booking.Services {
		return &booking.Services{
			Clock:           clock,
			PriceCalculator: calc,
			Calendar:        settings.Calendar,
		}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingUseCase,
		commands.NewPaymentUseCase,
		commands.NewMaintenanceUseCase,
		commands.NewViolationUseCase,
		func(uow shared.UnitOfWork, cache commands.CacheInvalidator, clk clock.Clock, cfg config.Config) commands.LocationCommands {
			return commands.NewLocationUseCase(uow, cache, clk, cfg.Payment.Currency)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(store queries.LocationReadStore, clk clock.Clock, cfg config.Config) queries.LocationQueries {
			return queries.NewLocationQueries(store, clk, cfg.Booking.PendingTTL, cfg.Booking.SearchRadius)
		},
		queries.NewBookingQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
