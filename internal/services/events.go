package services

import (
	"context"

	"urbantales/internal/models"

	"github.com/sirupsen/logrus"
)

// EventPublisher delivers order events to interested consumers.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

// EventHandler consumes one order event.
type EventHandler func(ctx context.Context, event models.OrderEvent) error

// InProcessPublisher hands events straight to a handler in the calling
// goroutine. It stands in for the broker when RabbitMQ is disabled.
type InProcessPublisher struct {
	handler EventHandler
	log     *logrus.Logger
}

// NewInProcessPublisher creates a publisher that invokes handler for every event.
func NewInProcessPublisher(handler EventHandler, log *logrus.Logger) *InProcessPublisher {
	return &InProcessPublisher{handler: handler, log: log}
}

// PublishOrderEvent runs the handler. Handler failures are logged, not returned.
func (p *InProcessPublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	if p.handler == nil {
		return nil
	}
	if err := p.handler(ctx, event); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"event":    event.Type,
			"order_id": event.OrderID,
		}).Error("in-process order event handler failed")
	}
	return nil
}
