package services

import (
	"context"
	"sort"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SellerOrderService exposes orders to sellers, restricted to the items they own.
type SellerOrderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	publisher EventPublisher
	log       *logrus.Logger
	now       func() time.Time
}

// NewSellerOrderService creates a new SellerOrderService.
func NewSellerOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, publisher EventPublisher, log *logrus.Logger) *SellerOrderService {
	return &SellerOrderService{
		orders:    orders,
		products:  products,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *SellerOrderService) WithClock(now func() time.Time) *SellerOrderService {
	s.now = now
	return s
}

// scopedOrders returns every order holding at least one of the seller's
// products, with sibling items of other sellers removed.
func (s *SellerOrderService) scopedOrders(ctx context.Context, sellerID string) ([]models.Order, error) {
	ids, err := s.products.IDsBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Order{}, nil
	}
	orders, err := s.orders.ListContainingProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		owned[id] = struct{}{}
	}

	scoped := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		items := make([]models.OrderItem, 0, len(o.Items))
		for _, item := range o.Items {
			if _, ok := owned[item.ProductID]; ok {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		o.Items = items
		scoped = append(scoped, o)
	}
	sort.SliceStable(scoped, func(i, j int) bool {
		return scoped[i].CreatedAt.After(scoped[j].CreatedAt)
	})
	return scoped, nil
}

// ListSellerOrders returns the seller's view of every order with their items, newest first.
func (s *SellerOrderService) ListSellerOrders(ctx context.Context, sellerID string) ([]models.OrderView, error) {
	orders, err := s.scopedOrders(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, models.NewOrderView(o))
	}
	return views, nil
}

// UpdateItemStatus changes the status of one line item. Authorization is by
// product ownership, so a seller may update only their own items of a shared order.
func (s *SellerOrderService) UpdateItemStatus(ctx context.Context, sellerID, orderID, productID string, status models.OrderStatus) (view *models.OrderView, err error) {
	defer func() { observeOrderOp(opItemStatus, err) }()

	if status == "" {
		return nil, apperror.Validation("status is required")
	}

	product, err := s.products.GetByID(ctx, productID)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Forbidden("product %s is not yours", productID)
	}
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, apperror.Forbidden("product %s is not yours", productID)
	}

	now := s.now()
	if err := s.orders.UpdateItemStatus(ctx, orderID, productID, status, now); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// The return window opens when the whole order reads as Delivered,
	// not when the first seller delivers.
	if status == models.StatusDelivered && order.DeliveredAt == nil && order.EffectiveStatus() == models.StatusDelivered {
		if err := s.orders.MarkDelivered(ctx, orderID, now); err != nil {
			return nil, err
		}
		if order, err = s.orders.GetByID(ctx, orderID); err != nil {
			return nil, err
		}
	}
	publishOrderEvent(ctx, s.publisher, s.log, orderEvent(models.EventOrderItemStatus, order, status, "", now))

	scoped := *order
	scoped.Items = nil
	for _, item := range order.Items {
		if item.ProductID == productID {
			scoped.Items = append(scoped.Items, item)
		}
	}
	v := models.NewOrderView(scoped)
	return &v, nil
}

// ComputeTotals sums units sold and earnings over the seller's qualifying items.
func (s *SellerOrderService) ComputeTotals(ctx context.Context, sellerID string) (models.SellerTotals, error) {
	orders, err := s.scopedOrders(ctx, sellerID)
	if err != nil {
		return models.SellerTotals{}, err
	}
	return totalsOf(orders), nil
}

func totalsOf(orders []models.Order) models.SellerTotals {
	var (
		sold     int
		earnings = decimal.Zero
	)
	for i := range orders {
		o := &orders[i]
		for _, item := range o.Items {
			if !o.CountsAsSold(item) {
				continue
			}
			sold += item.Quantity
			earnings = earnings.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return models.SellerTotals{Sold: sold, Earnings: earnings.InexactFloat64()}
}

// MonthlySeries returns delivered earnings per calendar month, oldest first.
func (s *SellerOrderService) MonthlySeries(ctx context.Context, sellerID string) ([]models.MonthlyEarning, error) {
	ids, err := s.products.IDsBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.MonthlyEarning{}, nil
	}
	series, err := s.orders.MonthlyDeliveredEarnings(ctx, ids)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = []models.MonthlyEarning{}
	}
	return series, nil
}

// Stats returns the seller's product count together with their totals.
func (s *SellerOrderService) Stats(ctx context.Context, sellerID string) (models.SellerStats, error) {
	count, err := s.products.CountBySeller(ctx, sellerID)
	if err != nil {
		return models.SellerStats{}, err
	}
	totals, err := s.ComputeTotals(ctx, sellerID)
	if err != nil {
		return models.SellerStats{}, err
	}
	return models.SellerStats{Products: count, SellerTotals: totals}, nil
}
