package queue

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitClient sends queue messages to a RabbitMQ broker.
type RabbitClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewRabbitClient connects to RabbitMQ and declares a durable queue.
func NewRabbitClient(url, queueName string) (*RabbitClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required")
	}
	if strings.TrimSpace(queueName) == "" {
		return nil, fmt.Errorf("queue name is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queueName, err)
	}

	return &RabbitClient{conn: conn, channel: ch, queue: queueName}, nil
}

// Send delivers a message to the configured queue with persistent delivery.
func (r *RabbitClient) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode queue message: %w", err)
	}

	err = r.channel.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish queue message: %w", err)
	}
	return nil
}

// Consume registers a manual-ack consumer and returns its delivery stream.
// Prefetch bounds the number of unacked deliveries held by this consumer.
func (r *RabbitClient) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := r.channel.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("set qos: %w", err)
		}
	}
	deliveries, err := r.channel.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("register consumer: %w", err)
	}
	return deliveries, nil
}

// Close tears down the channel and connection.
func (r *RabbitClient) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

var _ Client = (*RabbitClient)(nil)
