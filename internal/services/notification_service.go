package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"

	"github.com/sirupsen/logrus"
)

// DefaultNotificationLimit caps how many notifications a listing returns.
const DefaultNotificationLimit = 50

// NotificationService manages seller notifications and derives them from order events.
type NotificationService struct {
	notifications repositories.NotificationRepository
	products      repositories.ProductRepository
	limit         int
	log           *logrus.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications repositories.NotificationRepository, products repositories.ProductRepository, limit int, log *logrus.Logger) *NotificationService {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &NotificationService{
		notifications: notifications,
		products:      products,
		limit:         limit,
		log:           log,
	}
}

// List returns the seller's most recent notifications, newest first.
func (s *NotificationService) List(ctx context.Context, sellerID string) ([]models.Notification, error) {
	return s.notifications.ListBySeller(ctx, sellerID, s.limit)
}

// MarkAllRead flips every unread notification of the seller and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, sellerID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, sellerID)
}

// HandleOrderEventMessage decodes a broker message body and handles the event.
// Malformed bodies are rejected as validation errors.
func (s *NotificationService) HandleOrderEventMessage(ctx context.Context, body []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperror.Validation("malformed order event: %v", err)
	}
	return s.HandleOrderEvent(ctx, event)
}

// HandleOrderEvent notifies each distinct seller owning products in the order.
// Item status changes come from sellers themselves and produce no notification.
func (s *NotificationService) HandleOrderEvent(ctx context.Context, event models.OrderEvent) error {
	title, message, ok := describeOrderEvent(event)
	if !ok {
		return nil
	}

	owners, err := s.products.OwnersOf(ctx, event.ProductIDs)
	if err != nil {
		return err
	}
	sellers := make([]string, 0, len(owners))
	seen := make(map[string]struct{}, len(owners))
	for _, sellerID := range owners {
		if _, dup := seen[sellerID]; dup || sellerID == "" {
			continue
		}
		seen[sellerID] = struct{}{}
		sellers = append(sellers, sellerID)
	}
	sort.Strings(sellers)

	at := event.Occurred
	if at.IsZero() {
		at = time.Now()
	}
	for _, sellerID := range sellers {
		n := &models.Notification{
			SellerID: sellerID,
			Title:    title,
			Message:  message,
			Time:     at,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return err
		}
	}
	s.log.WithFields(logrus.Fields{
		"event":    event.Type,
		"order_id": event.OrderID,
		"sellers":  len(sellers),
	}).Debug("order event notifications created")
	return nil
}

func describeOrderEvent(event models.OrderEvent) (title, message string, ok bool) {
	switch event.Type {
	case models.EventOrderPlaced:
		return "New order", fmt.Sprintf("Order %s was placed.", event.OrderID), true
	case models.EventOrderCancelled:
		return "Order cancelled", fmt.Sprintf("Order %s was cancelled: %s", event.OrderID, event.Reason), true
	case models.EventOrderReturnRequested:
		return "Return requested", fmt.Sprintf("A return was requested for order %s: %s", event.OrderID, event.Reason), true
	default:
		return "", "", false
	}
}
