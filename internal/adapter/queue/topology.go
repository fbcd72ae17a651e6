package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeclareQueue declares a durable queue and binds it to exchange with key.
func DeclareQueue(ch *amqp.Channel, exchange, queue, key string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", queue, err)
	}
	return nil
}
