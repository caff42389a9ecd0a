package bootstrap

import (
	"context"
	"log/slog"

	"smartpark/internal/infra/broker"
	"smartpark/internal/infra/cache"
	"smartpark/internal/infra/mailer"
	"smartpark/internal/infra/payment"
	"smartpark/internal/pkg/config"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/outbox"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// InfraModule provides the adapters to external services.
var InfraModule = fx.Module("infra",
	fx.Provide(
		NewRedisClient,
		fx.Annotate(
			NewCacheStore,
			fx.As(fx.Self()),
			fx.As(new(commands.CacheInvalidator)),
		),
		NewPaymentGateway,
		NewWebhookVerifier,
		NewMailer,
		NewEventPublisher,
	),
)

// NewRedisClient returns nil when REDIS_ADDR is unset; caching is then off.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	client, err := cache.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		slog.Info("redis not configured, response cache disabled")
		return nil, nil
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func NewCacheStore(rdb *redis.Client, cfg config.Config) *cache.Store {
	return cache.NewStore(rdb, cfg.Redis.CacheTTL)
}

func NewPaymentGateway(cfg config.Config) commands.PaymentGateway {
	if cfg.Payment.SecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout will fail with a provider error")
	}
	return payment.NewStripeGateway(cfg.Payment)
}

func NewWebhookVerifier(cfg config.Config) commands.WebhookVerifier {
	return payment.NewWebhookVerifier(cfg.Payment)
}

func NewMailer(cfg config.Config) outbox.Mailer {
	if cfg.Mail.APIKey == "" {
		slog.Warn("RESEND_API_KEY not set, emails will only be logged")
	}
	return mailer.New(cfg.Mail)
}

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (outbox.EventPublisher, error) {
	publisher, err := broker.New(cfg.Events)
	if err != nil {
		return nil, err
	}
	slog.Info("event publisher configured", "driver", cfg.Events.Driver)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
