package repositories

import (
	"context"
	"errors"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSellerRepository is a GORM implementation of SellerRepository.
type GORMSellerRepository struct {
	db *gorm.DB
}

// NewGORMSellerRepository creates a new instance of GORMSellerRepository.
func NewGORMSellerRepository(db *gorm.DB) *GORMSellerRepository {
	return &GORMSellerRepository{
		db: db,
	}
}

// Create creates a new seller in the database.
func (r *GORMSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	if seller.ID == "" {
		seller.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("seller with this email or username already exists")
		}
		return apperror.Dependency(err, "failed to create seller")
	}
	return nil
}

func (r *GORMSellerRepository) first(ctx context.Context, column, value string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("seller with %s %s not found", column, value)
		}
		return nil, apperror.Dependency(err, "failed to get seller by %s", column)
	}
	return &seller, nil
}

// GetByEmail retrieves a seller by email.
func (r *GORMSellerRepository) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	return r.first(ctx, "email", email)
}

// GetByUsername retrieves a seller by username.
func (r *GORMSellerRepository) GetByUsername(ctx context.Context, username string) (*models.Seller, error) {
	return r.first(ctx, "username", username)
}

// GetByID retrieves a seller by ID.
func (r *GORMSellerRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	return r.first(ctx, "id", id)
}

// UpdateProfile applies the given column changes and returns the updated seller.
func (r *GORMSellerRepository) UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) (*models.Seller, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, apperror.Dependency(res.Error, "failed to update seller profile")
		}
		if res.RowsAffected == 0 {
			return nil, apperror.NotFound("seller %s not found", id)
		}
	}
	return r.GetByID(ctx, id)
}
