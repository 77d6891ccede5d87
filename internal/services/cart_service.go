package services

import (
	"context"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
)

// CartService manages buyer carts.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart returns the buyer's cart.
func (s *CartService) GetCart(ctx context.Context, buyerID string) (*models.Cart, error) {
	return s.carts.Get(ctx, buyerID)
}

// AddItem puts qty units of a product in the cart, merging with an existing line.
// Name, price and image are copied from the catalog.
func (s *CartService) AddItem(ctx context.Context, buyerID, productID string, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, apperror.Validation("quantity must be positive")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		image := product.Image
		if image == "" && len(product.Images) > 0 {
			image = product.Images[0]
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     image,
			Quantity:  qty,
		})
	}
	return s.save(ctx, cart)
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, buyerID, productID string, qty int) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = qty
		}
		return s.save(ctx, cart)
	}
	return nil, apperror.NotFound("product %s is not in the cart", productID)
}

// RemoveItem drops a product from the cart.
func (s *CartService) RemoveItem(ctx context.Context, buyerID, productID string) (*models.Cart, error) {
	return s.UpdateQuantity(ctx, buyerID, productID, 0)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, buyerID string) error {
	return s.carts.Clear(ctx, buyerID)
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
