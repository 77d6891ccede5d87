package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Order operation names used as metric labels.
const (
	opPlace         = "place"
	opCancel        = "cancel"
	opReturnRequest = "return_request"
	opReturnCancel  = "return_cancel"
	opItemStatus    = "item_status"
)

var orderOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "urbantales_order_operations_total",
	Help: "Order lifecycle operations by outcome.",
}, []string{"operation", "outcome"})

func observeOrderOp(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	orderOperations.WithLabelValues(op, outcome).Inc()
}
