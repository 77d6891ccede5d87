package services

import (
	"context"
	"strings"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Checkout carries the shipping and payment details of a new order.
type Checkout struct {
	Name          string
	Mobile        string
	Address       string
	Instructions  string
	PaymentMethod string
	PaymentStatus string
	TotalAmount   float64
}

// OrderService handles the buyer side of the order lifecycle.
type OrderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	carts     repositories.CartRepository
	publisher EventPublisher
	policy    Policy
	log       *logrus.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, carts repositories.CartRepository, publisher EventPublisher, policy Policy, log *logrus.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		carts:     carts,
		publisher: publisher,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// PlaceOrder turns the buyer's cart into an order and empties the cart.
// The submitted total is stored as is and never recomputed afterwards.
func (s *OrderService) PlaceOrder(ctx context.Context, buyerID string, in Checkout) (order *models.Order, err error) {
	defer func() { observeOrderOp(opPlace, err) }()

	cart, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperror.Validation("cart is empty")
	}

	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	owners, err := s.products.OwnersOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if _, ok := owners[item.ProductID]; !ok {
			return nil, apperror.Validation("product %s is no longer available", item.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Status:    models.StatusPending,
		})
	}

	now := s.now()
	order = &models.Order{
		ID:            uuid.New().String(),
		BuyerID:       buyerID,
		Items:         items,
		Status:        models.StatusPending,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		PaymentStatus: checkoutPaymentStatus(in.PaymentMethod, in.PaymentStatus),
		TotalAmount:   in.TotalAmount,
		Name:          strings.TrimSpace(in.Name),
		Mobile:        strings.TrimSpace(in.Mobile),
		Address:       strings.TrimSpace(in.Address),
		Instructions:  strings.TrimSpace(in.Instructions),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, buyerID); err != nil {
		s.log.WithError(err).WithField("buyer_id", buyerID).Warn("failed to clear cart after checkout")
	}

	s.publish(ctx, models.EventOrderPlaced, order, "", "")
	return order, nil
}

// checkoutPaymentStatus reduces the submitted payment status to Pending or
// Successful. Cash on delivery is always Pending at checkout.
// TODO: confirm prepaid payments with the gateway once one is integrated; the
// buyer-submitted status is trusted until then.
func checkoutPaymentStatus(method, status string) string {
	if strings.EqualFold(strings.TrimSpace(method), models.PaymentMethodCOD) {
		return models.PaymentStatusPending
	}
	if strings.EqualFold(strings.TrimSpace(status), models.PaymentStatusSuccessful) {
		return models.PaymentStatusSuccessful
	}
	return models.PaymentStatusPending
}

// ListBuyerOrders returns the buyer's orders, newest first.
func (s *OrderService) ListBuyerOrders(ctx context.Context, buyerID string) ([]models.OrderView, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, models.NewOrderView(o))
	}
	return views, nil
}

// GetBuyerOrder returns one of the buyer's own orders.
func (s *OrderService) GetBuyerOrder(ctx context.Context, buyerID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperror.Forbidden("order %s does not belong to you", orderID)
	}
	return order, nil
}

func requireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", apperror.Validation("reason is required")
	}
	return reason, nil
}

// Cancel cancels the whole order. Item statuses are left untouched.
func (s *OrderService) Cancel(ctx context.Context, buyerID, orderID, reason string) (order *models.Order, err error) {
	defer func() { observeOrderOp(opCancel, err) }()

	if reason, err = requireReason(reason); err != nil {
		return nil, err
	}
	order, err = s.GetBuyerOrder(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanCancel(order) {
		return nil, apperror.Validation("order cannot be cancelled once it is %s", order.EffectiveStatus())
	}
	if err := s.orders.Cancel(ctx, orderID, reason, s.now()); err != nil {
		return nil, err
	}

	order, err = s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventOrderCancelled, order, models.StatusCancelled, reason)
	return order, nil
}

// RequestReturn opens a return for a recently delivered order.
func (s *OrderService) RequestReturn(ctx context.Context, buyerID, orderID, reason string) (order *models.Order, err error) {
	defer func() { observeOrderOp(opReturnRequest, err) }()

	if reason, err = requireReason(reason); err != nil {
		return nil, err
	}
	order, err = s.GetBuyerOrder(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanReturn(order, s.now()) {
		return nil, apperror.Validation("order is not eligible for return")
	}
	if err := s.orders.RequestReturn(ctx, orderID, reason, s.now()); err != nil {
		return nil, err
	}

	order, err = s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventOrderReturnRequested, order, "", reason)
	return order, nil
}

// CancelReturn withdraws a return that has not progressed past Requested.
func (s *OrderService) CancelReturn(ctx context.Context, buyerID, orderID string) (order *models.Order, err error) {
	defer func() { observeOrderOp(opReturnCancel, err) }()

	order, err = s.GetBuyerOrder(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanCancelReturn(order) {
		return nil, apperror.Validation("return can only be cancelled while it is Requested")
	}
	if err := s.orders.CancelReturn(ctx, orderID, s.now()); err != nil {
		return nil, err
	}

	order, err = s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventOrderReturnCancelled, order, "", "")
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, status models.OrderStatus, reason string) {
	publishOrderEvent(ctx, s.publisher, s.log, orderEvent(eventType, order, status, reason, s.now()))
}

func orderEvent(eventType string, order *models.Order, status models.OrderStatus, reason string, at time.Time) models.OrderEvent {
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	return models.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		ProductIDs: ids,
		Status:     status,
		Reason:     reason,
		Total:      order.TotalAmount,
		Occurred:   at,
	}
}

// publishOrderEvent never fails the caller: the order change is already stored.
func publishOrderEvent(ctx context.Context, publisher EventPublisher, log *logrus.Logger, event models.OrderEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishOrderEvent(ctx, event); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event":    event.Type,
			"order_id": event.OrderID,
		}).Warn("failed to publish order event")
	}
}
