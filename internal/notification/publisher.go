package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Connect dials the broker. Confirmation delivery is best-effort downstream,
// but the connection itself is required at startup.
func Connect(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	return conn, nil
}

// Publisher pushes booking confirmations onto a queue consumed by the
// notify-worker. Publish failures are the caller's to log and swallow; a
// failed notification never invalidates the booking it describes.
type Publisher struct {
	channel *amqp091.Channel
	queue   string
}

func NewPublisher(conn *amqp091.Connection, queue string) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	_, err = channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &Publisher{channel: channel, queue: queue}, nil
}

func (p *Publisher) BookingConfirmed(ctx context.Context, msg BookingConfirmation) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}
