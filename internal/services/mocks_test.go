package services_test

import (
	"context"
	"io"
	"time"

	"urbantales/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ListBySeller(ctx context.Context, sellerID, category string) ([]models.Product, error) {
	args := m.Called(ctx, sellerID, category)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) IDsBySeller(ctx context.Context, sellerID string) ([]string, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) OwnersOf(ctx context.Context, productIDs []string) (map[string]string, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListContainingProducts(ctx context.Context, productIDs []string) ([]models.Order, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateItemStatus(ctx context.Context, orderID, productID string, status models.OrderStatus, at time.Time) error {
	args := m.Called(ctx, orderID, productID, status, at)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkDelivered(ctx context.Context, orderID string, at time.Time) error {
	args := m.Called(ctx, orderID, at)
	return args.Error(0)
}

func (m *MockOrderRepository) Cancel(ctx context.Context, orderID, reason string, at time.Time) error {
	args := m.Called(ctx, orderID, reason, at)
	return args.Error(0)
}

func (m *MockOrderRepository) RequestReturn(ctx context.Context, orderID, reason string, at time.Time) error {
	args := m.Called(ctx, orderID, reason, at)
	return args.Error(0)
}

func (m *MockOrderRepository) CancelReturn(ctx context.Context, orderID string, at time.Time) error {
	args := m.Called(ctx, orderID, at)
	return args.Error(0)
}

func (m *MockOrderRepository) MonthlyDeliveredEarnings(ctx context.Context, productIDs []string) ([]models.MonthlyEarning, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonthlyEarning), args.Error(1)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) UpdateContent(ctx context.Context, id string, rating int, comment string, at time.Time) (*models.Review, error) {
	args := m.Called(ctx, id, rating, comment, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) ToggleLike(ctx context.Context, id, userID string) (*models.Review, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) AddReply(ctx context.Context, id string, reply models.Reply) (*models.Review, error) {
	args := m.Called(ctx, id, reply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) RatingCounts(ctx context.Context, productID string) (map[int]int, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

// MockNotificationRepository is a mock implementation of repositories.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListBySeller(ctx context.Context, sellerID string, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, sellerID, limit)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, sellerID string) (int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Get(ctx context.Context, buyerID string) (*models.Cart, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, buyerID string) error {
	args := m.Called(ctx, buyerID)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSellerRepository is a mock implementation of repositories.SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

func (m *MockSellerRepository) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetByUsername(ctx context.Context, username string) (*models.Seller, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerRepository) UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) (*models.Seller, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	events []models.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	p.events = append(p.events, event)
	return p.err
}
