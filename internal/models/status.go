package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// OrderStatus is the closed set of order and line item statuses.
// The zero value means the status was never set.
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusPlaced         OrderStatus = "Placed"
	StatusPickedUp       OrderStatus = "Picked Up"
	StatusShipped        OrderStatus = "Shipped"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
	StatusReturned       OrderStatus = "Returned"
)

// stage orders the progress statuses; terminal statuses have no stage.
var stage = map[OrderStatus]int{
	StatusPending:        0,
	StatusPlaced:         1,
	StatusPickedUp:       2,
	StatusShipped:        3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

var orderStatuses = []OrderStatus{
	StatusPending, StatusPlaced, StatusPickedUp, StatusShipped,
	StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusReturned,
}

// ReturnStatus tracks a buyer return. The zero value means no return is in progress.
type ReturnStatus string

const (
	ReturnRequested       ReturnStatus = "Requested"
	ReturnPickupScheduled ReturnStatus = "Pickup Scheduled"
	ReturnPickedUp        ReturnStatus = "Picked Up"
	ReturnRefundInitiated ReturnStatus = "Refund Initiated"
	ReturnRefunded        ReturnStatus = "Refunded"
)

var returnStatuses = []ReturnStatus{
	ReturnRequested, ReturnPickupScheduled, ReturnPickedUp, ReturnRefundInitiated, ReturnRefunded,
}

// NormalizeStatus lowercases s, collapses runs of whitespace and trims it.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ParseOrderStatus maps a producer string onto an OrderStatus regardless of casing and spacing.
// An empty or blank string yields the zero value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	n := NormalizeStatus(s)
	if n == "" {
		return "", nil
	}
	for _, st := range orderStatuses {
		if NormalizeStatus(string(st)) == n {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// ParseReturnStatus is the ReturnStatus counterpart of ParseOrderStatus.
func ParseReturnStatus(s string) (ReturnStatus, error) {
	n := NormalizeStatus(s)
	if n == "" {
		return "", nil
	}
	for _, st := range returnStatuses {
		if NormalizeStatus(string(st)) == n {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown return status %q", s)
}

// IsTerminal reports whether s ends the order lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// Stage returns the progress rank of s and false for terminal or unset statuses.
func (s OrderStatus) Stage() (int, bool) {
	r, ok := stage[s]
	return r, ok
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(s))
}

func (s *OrderStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, err := bsonString(t, data)
	if err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *ReturnStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseReturnStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReturnStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(s))
}

func (s *ReturnStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, err := bsonString(t, data)
	if err != nil {
		return err
	}
	parsed, err := ParseReturnStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func bsonString(t bsontype.Type, data []byte) (string, error) {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		return "", nil
	}
	str, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return "", fmt.Errorf("status must be a string, got bson type %s", t)
	}
	return str, nil
}
