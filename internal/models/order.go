package models

import (
	"strings"
	"time"
)

// PaymentMethodCOD marks cash-on-delivery orders.
const PaymentMethodCOD = "COD"

// Payment statuses stored on an order.
const (
	PaymentStatusPending    = "Pending"
	PaymentStatusSuccessful = "Successful"
)

// OrderItem represents a single line within an order.
// ProductID doubles as the foreign key into the product collection.
type OrderItem struct {
	ProductID string      `json:"productId" bson:"id"`
	Name      string      `json:"name" bson:"name"`
	Price     float64     `json:"price" bson:"price"` // Price at the time of order
	Image     string      `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int         `json:"qty" bson:"qty"`
	Status    OrderStatus `json:"status" bson:"status"`
}

// Order represents a buyer checkout, possibly spanning several sellers.
type Order struct {
	ID            string       `json:"id" bson:"_id"`
	BuyerID       string       `json:"buyerId" bson:"userId"`
	Items         []OrderItem  `json:"items" bson:"items"`
	Status        OrderStatus  `json:"orderStatus" bson:"orderStatus"`
	PaymentMethod string       `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus" bson:"paymentStatus"`
	TotalAmount   float64      `json:"totalAmount" bson:"totalAmount"` // frozen at checkout
	DeliveredAt   *time.Time   `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	Name          string       `json:"name" bson:"name"`
	Mobile        string       `json:"mobile" bson:"mobile"`
	Address       string       `json:"address" bson:"address"`
	Instructions  string       `json:"instructions,omitempty" bson:"instructions,omitempty"`
	CancelReason  string       `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	ReturnReason  string       `json:"returnReason,omitempty" bson:"returnReason,omitempty"`
	ReturnStatus  ReturnStatus `json:"returnStatus,omitempty" bson:"returnStatus,omitempty"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// OrderView is an order as returned to API callers, with its derived display status.
type OrderView struct {
	Order
	EffectiveStatus OrderStatus `json:"effectiveStatus"`
}

// NewOrderView wraps o with its effective status.
func NewOrderView(o Order) OrderView {
	return OrderView{Order: o, EffectiveStatus: o.EffectiveStatus()}
}

// IsCashOnDelivery reports whether the order is paid on delivery.
func (o *Order) IsCashOnDelivery() bool {
	return strings.EqualFold(strings.TrimSpace(o.PaymentMethod), PaymentMethodCOD)
}

// IsPaid reports whether a prepaid order's payment succeeded.
func (o *Order) IsPaid() bool {
	return strings.EqualFold(strings.TrimSpace(o.PaymentStatus), PaymentStatusSuccessful)
}

// CountsAsSold reports whether item earns revenue: prepaid orders count once
// paid, cash-on-delivery orders only once the item itself is delivered.
func (o *Order) CountsAsSold(item OrderItem) bool {
	if o.IsCashOnDelivery() {
		return item.Status == StatusDelivered
	}
	return o.IsPaid()
}

// EffectiveStatus derives the single status shown for the order.
//
// An order-level Cancelled or Returned wins. Otherwise the least advanced
// progress status among the items is used, so an order only reads as
// Delivered once every live item is. When all items are terminal the first
// item's status is used, and an order without item statuses falls back to
// its own status.
func (o *Order) EffectiveStatus() OrderStatus {
	if o.Status.IsTerminal() {
		return o.Status
	}

	var (
		least    OrderStatus
		leastRk  int
		terminal OrderStatus
	)
	for _, item := range o.Items {
		if item.Status == "" {
			continue
		}
		if rk, ok := item.Status.Stage(); ok {
			if least == "" || rk < leastRk {
				least, leastRk = item.Status, rk
			}
			continue
		}
		if terminal == "" {
			terminal = item.Status
		}
	}

	switch {
	case least != "":
		return least
	case terminal != "":
		return terminal
	case o.Status != "":
		return o.Status
	default:
		return StatusPending
	}
}

// HasItem reports whether the order contains productID.
func (o *Order) HasItem(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// OrderEvent is published on the broker whenever an order changes.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	BuyerID    string      `json:"buyer_id"`
	ProductIDs []string    `json:"product_ids"`
	Status     OrderStatus `json:"status,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Total      float64     `json:"total"`
	Occurred   time.Time   `json:"occurred"`
}

// Order event types.
const (
	EventOrderPlaced          = "order.placed"
	EventOrderItemStatus      = "order.item_status"
	EventOrderCancelled       = "order.cancelled"
	EventOrderReturnRequested = "order.return_requested"
	EventOrderReturnCancelled = "order.return_cancelled"
)

// MonthlyEarning is one point of a seller's sales chart.
type MonthlyEarning struct {
	Month    string  `json:"month"`
	Year     int     `json:"-"`
	MonthNum int     `json:"-"`
	Earnings float64 `json:"earnings"`
}

// SellerTotals are the running sold/earnings figures of a seller.
type SellerTotals struct {
	Sold     int     `json:"sold"`
	Earnings float64 `json:"earnings"`
}

// SellerStats extends SellerTotals with the seller's product count.
type SellerStats struct {
	Products int64 `json:"products"`
	SellerTotals
}
