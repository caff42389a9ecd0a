package components

import (
	"smartpark/internal/handler"
	"smartpark/internal/handler/api"
	"smartpark/internal/handler/middleware"
	"smartpark/internal/handler/validation"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/queries"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewLocationHandler,
		func(cmds commands.BookingCommands, q queries.BookingQueries, settings commands.Settings) *api.BookingHandler {
			return api.NewBookingHandler(cmds, q, settings.Calendar)
		},
		api.NewPaymentHandler,
		api.NewViolationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(
		validation.Register,
		handler.NewRouter,
	),
)
