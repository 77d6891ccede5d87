// Package rabbitmq publishes and consumes order events over a durable AMQP queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"urbantales/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *logrus.Logger
	mu      sync.Mutex // guards channel publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// MessageHandler processes one delivery body. Returning a PermanentError
// drops the message instead of requeueing it.
type MessageHandler func(ctx context.Context, body []byte) error

// PermanentError marks a message that can never be processed.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// NewClient connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, log *logrus.Logger) (*Client, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("queue name is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", cfg.Queue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ client: %v", errs)
	}
	return nil
}

// EncodeOrderEvent builds the persistent JSON message for event.
func EncodeOrderEvent(event models.OrderEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.Type,
		MessageId:    fmt.Sprintf("%s:%s:%d", event.OrderID, event.Type, event.Occurred.UnixNano()),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

// PublishOrderEvent publishes event to the order event queue via the default exchange.
func (c *Client) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	msg, err := EncodeOrderEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		msg)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	c.log.WithFields(logrus.Fields{"event": event.Type, "order_id": event.OrderID}).Debug("order event published")
	return nil
}

// ConsumeOrderEvents starts a goroutine that feeds every delivery to handler
// until ctx is done or the channel closes. Deliveries are acked on success,
// dropped on a PermanentError and requeued otherwise.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler MessageHandler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", c.queue).Info("waiting for order events")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.log.Warn("order event delivery channel closed")
					return
				}
				c.dispatch(ctx, msg, handler)
			}
		}
	}()

	return nil
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) dispatch(ctx context.Context, msg amqp.Delivery, handler MessageHandler) {
	Settle(ctx, c.log, msg.DeliveryTag, msg.Body, msg, handler)
}

// Settle runs handler on body and acknowledges the message accordingly.
func Settle(ctx context.Context, log *logrus.Logger, tag uint64, body []byte, ack Acknowledger, handler MessageHandler) {
	entry := log.WithField("delivery_tag", tag)

	err := handler(ctx, body)
	if err == nil {
		if ackErr := ack.Ack(false); ackErr != nil {
			entry.WithError(ackErr).Error("failed to ack message")
		}
		return
	}

	var permanent *PermanentError
	requeue := !errors.As(err, &permanent)
	entry.WithError(err).WithField("requeue", requeue).Error("failed to process order event")
	if nackErr := ack.Nack(false, requeue); nackErr != nil {
		entry.WithError(nackErr).Error("failed to nack message")
	}
}
