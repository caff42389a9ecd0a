package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"smartpark/internal/pkg/config"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes booking events keyed by booking id, so all events of
// one booking land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.EventsConfig) (*KafkaPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errs.New("at least one kafka broker is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errs.New("kafka topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			slog.Error("kafka writer error", "detail", msg, "args", args)
		}),
	}
	return &KafkaPublisher{writer: writer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt outbox.BookingEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "failed to encode booking event")
	}

	msg := kafka.Message{
		Key:   []byte(evt.BookingID.String()),
		Value: body,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "event_id", Value: []byte(evt.ID.String())},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrapf(err, "failed to publish %s to kafka", evt.Type)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
