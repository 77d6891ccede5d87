package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MemoryProductRepository) filter(keep func(models.Product) bool) []models.Product {
	list := make([]models.Product, 0)
	for _, p := range r.products {
		if keep(p) {
			list = append(list, p)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// ListByCategory returns products whose category matches case-insensitively, newest first.
func (r *MemoryProductRepository) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(p models.Product) bool {
		return strings.EqualFold(p.Category, category)
	}), nil
}

// ListBySeller returns a seller's products, optionally restricted to one category.
func (r *MemoryProductRepository) ListBySeller(_ context.Context, sellerID, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(p models.Product) bool {
		return p.SellerID == sellerID && (category == "" || p.Category == category)
	}), nil
}

// IDsBySeller returns the identifiers of every product owned by sellerID.
func (r *MemoryProductRepository) IDsBySeller(_ context.Context, sellerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0)
	for id, p := range r.products {
		if p.SellerID == sellerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// CountBySeller counts a seller's products.
func (r *MemoryProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	ids, err := r.IDsBySeller(ctx, sellerID)
	return int64(len(ids)), err
}

// OwnersOf maps each known product id to its seller.
func (r *MemoryProductRepository) OwnersOf(_ context.Context, productIDs []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[string]string, len(productIDs))
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			owners[id] = p.SellerID
		}
	}
	return owners, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return apperror.NotFound("product %s not found", product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperror.NotFound("product %s not found", id)
	}
	delete(r.products, id)
	return nil
}
