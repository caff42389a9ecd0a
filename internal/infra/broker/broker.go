package broker

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"smartpark/internal/pkg/config"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"
)

const (
	DriverRabbitMQ = "rabbitmq"
	DriverKafka    = "kafka"
	DriverLog      = "log"
)

// Publisher is an outbox.EventPublisher that owns a connection.
type Publisher interface {
	outbox.EventPublisher
	io.Closer
}

// New returns the publisher selected by EVENTS_DRIVER.
func New(cfg config.EventsConfig) (Publisher, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverRabbitMQ:
		return NewRabbitPublisher(cfg), nil
	case DriverKafka:
		return NewKafkaPublisher(cfg)
	case DriverLog, "":
		return LogPublisher{}, nil
	default:
		return nil, errs.New("unknown events driver: " + cfg.Driver)
	}
}

// LogPublisher only logs events; used in development and tests.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, evt outbox.BookingEvent) error {
	slog.Info("booking event",
		"event_id", evt.ID,
		"type", evt.Type,
		"booking_id", evt.BookingID,
		"location_id", evt.LocationID,
		"status", evt.Status,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
