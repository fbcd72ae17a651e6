package queue

import (
	"context"
	"fmt"

	"github.com/aq2208/tableorder/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitProducer publishes outbox rows to the events exchange.
type RabbitProducer struct {
	ch         amqpPublisher
	exchange   string
	routingKey string
}

// NewRabbitProducer declares the exchange once at startup.
func NewRabbitProducer(ch *amqp.Channel, exchange, routingKey string) (*RabbitProducer, error) {
	// topic exchange, durable
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitProducer{ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

// Publish sends one event. The outbox channel travels as the message type so
// consumers can route on it.
func (p *RabbitProducer) Publish(ctx context.Context, channel string, body []byte) error {
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Type:         channel,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
