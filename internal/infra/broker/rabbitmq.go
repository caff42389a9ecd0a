package broker

import (
	"context"
	"encoding/json"
	"sync"

	"smartpark/internal/pkg/config"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes booking events to a durable topic exchange with
// the event type as routing key. The connection is opened lazily and
// reopened after it drops.
type RabbitPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitPublisher(cfg config.EventsConfig) *RabbitPublisher {
	return &RabbitPublisher{url: cfg.AMQPURL, exchange: cfg.Exchange}
}

func (p *RabbitPublisher) Publish(ctx context.Context, evt outbox.BookingEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "failed to encode booking event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID.String(),
		Type:         string(evt.Type),
		Timestamp:    evt.OccurredAt.UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, string(evt.Type), false, false, pub); err != nil {
		p.reset()
		return errs.Wrapf(err, "failed to publish %s to rabbitmq", evt.Type)
	}
	return nil
}

// channel must be called with mu held.
func (p *RabbitPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, errs.Wrap(err, "rabbitmq dial failed")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "rabbitmq channel open failed")
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrap(err, "rabbitmq exchange declare failed")
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
