package bootstrap

import (
	"strings"

	"smartpark/internal/pkg/config"
	"smartpark/internal/usecase/commands"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewSettings,
	),
)

// NewSettings derives the booking settings shared by the command use cases.
func NewSettings(cfg config.Config) commands.Settings {
	base := strings.TrimRight(cfg.Server.AppURL, "/")
	return commands.Settings{
		PendingTTL:     cfg.Booking.PendingTTL,
		IdempotencyTTL: cfg.Booking.IdempotencyTTL,
		Calendar:       cfg.Booking.Location(),
		SuccessURL:     base + cfg.Payment.SuccessPath,
		CancelURL:      base + cfg.Payment.CancelPath,
		ViolationEmail: cfg.Mail.ViolationEmail,
		ExpireBatch:    100,
	}
}
