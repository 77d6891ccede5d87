package repositories

import (
	"context"
	"sort"
	"sync"

	"urbantales/internal/models"

	"github.com/google/uuid"
)

// MemoryNotificationRepository is an in-memory implementation of NotificationRepository.
type MemoryNotificationRepository struct {
	notifications []models.Notification
	mu            sync.RWMutex
}

// NewMemoryNotificationRepository creates a new instance of MemoryNotificationRepository.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

// Create stores a notification.
func (r *MemoryNotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	r.notifications = append(r.notifications, *n)
	return nil
}

// ListBySeller returns at most limit notifications of a seller, newest first.
func (r *MemoryNotificationRepository) ListBySeller(_ context.Context, sellerID string, limit int) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Notification, 0)
	for _, n := range r.notifications {
		if n.SellerID == sellerID {
			list = append(list, n)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Time.After(list[j].Time)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// MarkAllRead flips every unread notification of the seller and returns how many changed.
func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, sellerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.notifications {
		if r.notifications[i].SellerID == sellerID && !r.notifications[i].IsRead {
			r.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}
