package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DeliveredAt != nil {
		at := *o.DeliveredAt
		o.DeliveredAt = &at
	}
	return o
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return apperror.Conflict("order %s already exists", order.ID)
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperror.NotFound("order %s not found", id)
	}
	out := cloneOrder(order)
	return &out, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *MemoryOrderRepository) ListByBuyer(_ context.Context, buyerID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			list = append(list, cloneOrder(o))
		}
	}
	sortNewestFirst(list)
	return list, nil
}

// ListContainingProducts returns orders with at least one item among productIDs, newest first.
func (r *MemoryOrderRepository) ListContainingProducts(_ context.Context, productIDs []string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := toSet(productIDs)
	list := make([]models.Order, 0)
	for _, o := range r.orders {
		for _, item := range o.Items {
			if _, ok := wanted[item.ProductID]; ok {
				list = append(list, cloneOrder(o))
				break
			}
		}
	}
	sortNewestFirst(list)
	return list, nil
}

// UpdateItemStatus sets the status of one line item in place.
func (r *MemoryOrderRepository) UpdateItemStatus(_ context.Context, orderID, productID string, status models.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return apperror.NotFound("order %s not found", orderID)
	}
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			order.Items[i].Status = status
			order.UpdatedAt = at
			r.orders[orderID] = order
			return nil
		}
	}
	return apperror.NotFound("item %s not found in order %s", productID, orderID)
}

// MarkDelivered records the delivery time unless one is already set.
func (r *MemoryOrderRepository) MarkDelivered(_ context.Context, orderID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return apperror.NotFound("order %s not found", orderID)
	}
	if order.DeliveredAt == nil {
		order.DeliveredAt = &at
		r.orders[orderID] = order
	}
	return nil
}

// Cancel sets the order-level status to Cancelled with a reason.
func (r *MemoryOrderRepository) Cancel(_ context.Context, orderID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return apperror.NotFound("order %s not found", orderID)
	}
	if order.Status.IsTerminal() {
		return apperror.Validation("order %s is already %s", orderID, order.Status)
	}
	order.Status = models.StatusCancelled
	order.CancelReason = reason
	order.UpdatedAt = at
	r.orders[orderID] = order
	return nil
}

// RequestReturn opens a return when none is in progress.
func (r *MemoryOrderRepository) RequestReturn(_ context.Context, orderID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return apperror.NotFound("order %s not found", orderID)
	}
	if order.ReturnStatus != "" {
		return apperror.Validation("a return is already in progress for order %s", orderID)
	}
	order.ReturnStatus = models.ReturnRequested
	order.ReturnReason = reason
	order.UpdatedAt = at
	r.orders[orderID] = order
	return nil
}

// CancelReturn clears a return that is still only Requested.
func (r *MemoryOrderRepository) CancelReturn(_ context.Context, orderID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return apperror.NotFound("order %s not found", orderID)
	}
	if order.ReturnStatus != models.ReturnRequested {
		return apperror.Validation("return for order %s can no longer be cancelled", orderID)
	}
	order.ReturnStatus = ""
	order.ReturnReason = ""
	order.UpdatedAt = at
	r.orders[orderID] = order
	return nil
}

// MonthlyDeliveredEarnings sums delivered item revenue per calendar month (UTC) of order creation.
func (r *MemoryOrderRepository) MonthlyDeliveredEarnings(_ context.Context, productIDs []string) ([]models.MonthlyEarning, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := toSet(productIDs)
	var items []monthlyItem
	for _, o := range r.orders {
		created := o.CreatedAt.UTC()
		for _, item := range o.Items {
			if _, ok := wanted[item.ProductID]; !ok || item.Status != models.StatusDelivered {
				continue
			}
			items = append(items, monthlyItem{
				year:  created.Year(),
				month: int(created.Month()),
				price: item.Price,
				qty:   item.Quantity,
			})
		}
	}
	return groupMonthly(items), nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
