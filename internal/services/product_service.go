package services

import (
	"context"
	"strings"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListByCategory returns the public catalog of one category.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperror.Validation("category is required")
	}
	return s.repo.ListByCategory(ctx, category)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListSellerProducts lists the seller's own products, optionally for one category.
func (s *ProductService) ListSellerProducts(ctx context.Context, sellerID, category string) ([]models.Product, error) {
	return s.repo.ListBySeller(ctx, sellerID, strings.TrimSpace(category))
}

// GetSellerProduct returns a product only when sellerID owns it.
// Products of other sellers are reported as not found.
func (s *ProductService) GetSellerProduct(ctx context.Context, sellerID, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, apperror.NotFound("product %s not found", id)
	}
	return product, nil
}

// CreateProduct adds a product owned by sellerID.
func (s *ProductService) CreateProduct(ctx context.Context, sellerID string, product *models.Product) error {
	product.ID = ""
	product.SellerID = sellerID
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)
	product.CreatedAt = time.Now()
	return s.repo.Create(ctx, product)
}

// UpdateProduct replaces the seller's product, keeping its identity and owner.
func (s *ProductService) UpdateProduct(ctx context.Context, sellerID, id string, changes *models.Product) (*models.Product, error) {
	existing, err := s.GetSellerProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	changes.ID = existing.ID
	changes.SellerID = existing.SellerID
	changes.CreatedAt = existing.CreatedAt
	changes.Name = strings.TrimSpace(changes.Name)
	changes.Category = strings.TrimSpace(changes.Category)
	if err := s.repo.Update(ctx, changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// DeleteProduct deletes the seller's product.
func (s *ProductService) DeleteProduct(ctx context.Context, sellerID, id string) error {
	if _, err := s.GetSellerProduct(ctx, sellerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
