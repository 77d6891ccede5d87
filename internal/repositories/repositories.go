package repositories

import (
	"context"
	"time"

	"urbantales/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID, category string) ([]models.Product, error)
	IDsBySeller(ctx context.Context, sellerID string) ([]string, error)
	CountBySeller(ctx context.Context, sellerID string) (int64, error)
	OwnersOf(ctx context.Context, productIDs []string) (map[string]string, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order data access.
// Mutations touch only the named fields of a single order document.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	ListContainingProducts(ctx context.Context, productIDs []string) ([]models.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, productID string, status models.OrderStatus, at time.Time) error
	MarkDelivered(ctx context.Context, orderID string, at time.Time) error
	Cancel(ctx context.Context, orderID, reason string, at time.Time) error
	RequestReturn(ctx context.Context, orderID, reason string, at time.Time) error
	CancelReturn(ctx context.Context, orderID string, at time.Time) error
	MonthlyDeliveredEarnings(ctx context.Context, productIDs []string) ([]models.MonthlyEarning, error)
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	UpdateContent(ctx context.Context, id string, rating int, comment string, at time.Time) (*models.Review, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id, userID string) (*models.Review, error)
	AddReply(ctx context.Context, id string, reply models.Reply) (*models.Review, error)
	RatingCounts(ctx context.Context, productID string) (map[int]int, error)
}

// NotificationRepository defines the interface for seller notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListBySeller(ctx context.Context, sellerID string, limit int) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, sellerID string) (int64, error)
}

// CartRepository defines the interface for buyer carts.
type CartRepository interface {
	Get(ctx context.Context, buyerID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, buyerID string) error
}

// UserRepository defines the interface for buyer accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SellerRepository defines the interface for seller accounts.
type SellerRepository interface {
	Create(ctx context.Context, seller *models.Seller) error
	GetByEmail(ctx context.Context, email string) (*models.Seller, error)
	GetByUsername(ctx context.Context, username string) (*models.Seller, error)
	GetByID(ctx context.Context, id string) (*models.Seller, error)
	UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) (*models.Seller, error)
}
