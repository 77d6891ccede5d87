package services

import (
	"time"

	"urbantales/internal/models"
)

// DefaultReturnWindowDays is how long after delivery a buyer may ask for a return.
const DefaultReturnWindowDays = 4

// Policy decides which buyer-initiated transitions an order currently allows.
type Policy struct {
	ReturnWindowDays float64
}

// NewPolicy creates a Policy with the given return window in days.
func NewPolicy(returnWindowDays float64) Policy {
	return Policy{ReturnWindowDays: returnWindowDays}
}

// CanCancel is true unless the order is delivered, cancelled or returned.
func (p Policy) CanCancel(order *models.Order) bool {
	st := order.EffectiveStatus()
	return st != models.StatusDelivered && !st.IsTerminal()
}

// CanReturn is true for a delivered order with no return in progress whose
// delivery lies between 0 and ReturnWindowDays days before now, both inclusive.
func (p Policy) CanReturn(order *models.Order, now time.Time) bool {
	if order.EffectiveStatus() != models.StatusDelivered {
		return false
	}
	if order.DeliveredAt == nil || order.ReturnStatus != "" {
		return false
	}
	days := now.Sub(*order.DeliveredAt).Hours() / 24
	return days >= 0 && days <= p.ReturnWindowDays
}

// CanCancelReturn is true while the return is still only Requested.
func (p Policy) CanCancelReturn(order *models.Order) bool {
	return order.ReturnStatus == models.ReturnRequested
}
