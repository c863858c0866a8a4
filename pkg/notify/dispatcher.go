// Package notify publishes push-notification jobs for the delivery worker.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notification is the payload shown on a device.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Dispatcher fans a notification out to a set of device tokens. Delivery is
// best-effort; callers must treat a failure as non-fatal.
type Dispatcher interface {
	Push(ctx context.Context, tokens []string, n Notification) error
}

// AMQPDispatcher publishes push jobs onto a durable RabbitMQ queue consumed
// by the external delivery worker.
type AMQPDispatcher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPDispatcher dials the broker and declares the queue.
func NewAMQPDispatcher(amqpURL, queue string) (*AMQPDispatcher, error) {
	queue = strings.TrimSpace(queue)
	if queue == "" {
		queue = "push.notifications"
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPDispatcher{conn: conn, ch: ch, queue: queue}, nil
}

type pushJob struct {
	Tokens       []string `json:"tokens"`
	Notification `json:"notification"`
	QueuedAt     time.Time `json:"queuedAt"`
}

// Push publishes one persistent job carrying all target tokens.
func (d *AMQPDispatcher) Push(ctx context.Context, tokens []string, n Notification) error {
	if len(tokens) == 0 {
		return nil
	}
	body, err := json.Marshal(pushJob{
		Tokens:       tokens,
		Notification: n,
		QueuedAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	err = d.ch.PublishWithContext(ctx, "", d.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish push job: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (d *AMQPDispatcher) Close() error {
	var errs []error
	if d.ch != nil {
		errs = append(errs, d.ch.Close())
	}
	if d.conn != nil {
		errs = append(errs, d.conn.Close())
	}
	return errors.Join(errs...)
}
