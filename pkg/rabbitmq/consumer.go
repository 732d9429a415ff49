package rabbitmq

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DLXName  = ExchangeName + ".dlx"
	DLXQueue = ExchangeName + ".dlq"
)

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer dials the broker, declares the topic exchange, a durable queue
// bound to the given routing keys with a dead-letter target, and sets the
// prefetch limit that bounds concurrent in-flight deliveries.
func NewConsumer(url, queue string, bindings []string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	cleanup := func() {
		ch.Close()
		conn.Close()
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	// Dead-letter exchange and queue for messages that exhaust redelivery.
	if err := ch.ExchangeDeclare(DLXName, ExchangeKind, true, false, false, false, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("rabbitmq dlx declare: %w", err)
	}
	if _, err := ch.QueueDeclare(DLXQueue, true, false, false, false, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("rabbitmq dlq declare: %w", err)
	}
	if err := ch.QueueBind(DLXQueue, "#", DLXName, false, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("rabbitmq dlq bind: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": DLXName,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	for _, key := range bindings {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			cleanup()
			return nil, fmt.Errorf("rabbitmq queue bind %s: %w", key, err)
		}
	}

	if prefetch <= 0 {
		prefetch = 10
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		cleanup()
		return nil, fmt.Errorf("rabbitmq qos: %w", err)
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Consume returns a channel of deliveries requiring manual acknowledgment.
func (c *Consumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue,
		"",    // consumer tag
		false, // auto-ack = false, we ack manually after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	log.Printf("[RabbitMQ] consuming from queue: %s", c.queue)
	return msgs, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
