package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/models"
	"urbantales/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SellerOrderHandler serves the seller's scoped orders and dashboard analytics.
type SellerOrderHandler struct {
	service  *services.SellerOrderService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewSellerOrderHandler creates a new SellerOrderHandler.
func NewSellerOrderHandler(service *services.SellerOrderService, log *logrus.Logger) *SellerOrderHandler {
	return &SellerOrderHandler{service: service, validate: newValidator(), log: log}
}

// RegisterRoutes registers seller order and analytics routes behind seller authentication.
func (h *SellerOrderHandler) RegisterRoutes(router fiber.Router, sellerAuth fiber.Handler) {
	orders := router.Group("/sellers/orders", sellerAuth)
	orders.Get("/", h.HandleListOrders)
	orders.Put("/:orderId/items/:productId/status", h.HandleUpdateItemStatus)

	analytics := router.Group("/sellers/analytics", sellerAuth)
	analytics.Get("/stats", h.HandleStats)
	analytics.Get("/sales-chart", h.HandleSalesChart)
}

// ItemStatusRequest is the body of the item status update. The status is
// parsed case and whitespace insensitively while decoding.
type ItemStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func (h *SellerOrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListSellerOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(orders)
}

// HandleUpdateItemStatus changes the status of one of the seller's items in an order.
func (h *SellerOrderHandler) HandleUpdateItemStatus(c *fiber.Ctx) error {
	var req ItemStatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.UpdateItemStatus(c.UserContext(), middleware.UserID(c),
		c.Params("orderId"), c.Params("productId"), req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}

func (h *SellerOrderHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *SellerOrderHandler) HandleSalesChart(c *fiber.Ctx) error {
	series, err := h.service.MonthlySeries(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(series)
}
