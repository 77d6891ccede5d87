package repositories

import (
	"context"
	"sync"

	"urbantales/internal/models"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
type MemoryCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// Get returns the buyer's cart, empty when none was saved yet.
func (r *MemoryCartRepository) Get(_ context.Context, buyerID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[buyerID]
	if !ok {
		return &models.Cart{BuyerID: buyerID, Items: []models.CartItem{}}, nil
	}
	cart.Items = append([]models.CartItem{}, cart.Items...)
	return &cart, nil
}

// Save replaces the buyer's cart.
func (r *MemoryCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *cart
	stored.Items = append([]models.CartItem{}, cart.Items...)
	r.carts[cart.BuyerID] = stored
	return nil
}

// Clear empties the buyer's cart.
func (r *MemoryCartRepository) Clear(_ context.Context, buyerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, buyerID)
	return nil
}
