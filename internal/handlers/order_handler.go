package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/models"
	"urbantales/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles HTTP requests for the buyer's orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the order routes behind buyer authentication.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, buyerAuth fiber.Handler) {
	orderRoutes := router.Group("/orders", buyerAuth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancel)
	orderRoutes.Post("/:id/return", h.HandleRequestReturn)
	orderRoutes.Post("/:id/cancel-return", h.HandleCancelReturn)
}

// CreateOrderRequest is the checkout body; items come from the cart.
type CreateOrderRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Mobile        string  `json:"mobile" validate:"required,min=7,max=20"`
	Address       string  `json:"address" validate:"required,max=500"`
	Instructions  string  `json:"instructions" validate:"omitempty,max=500"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,max=40"`
	PaymentStatus string  `json:"paymentStatus" validate:"omitempty,max=40"`
	TotalAmount   float64 `json:"totalAmount" validate:"gt=0"`
}

// ReasonRequest carries the buyer's reason for a cancel or return.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// HandleGetOrders lists the buyer's own orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListBuyerOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one of the buyer's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetBuyerOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(models.NewOrderView(*order))
}

// HandleCreateOrder places an order from the buyer's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), services.Checkout{
		Name:          req.Name,
		Mobile:        req.Mobile,
		Address:       req.Address,
		Instructions:  req.Instructions,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		TotalAmount:   req.TotalAmount,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewOrderView(*order))
}

func (h *OrderHandler) reason(c *fiber.Ctx) (string, error) {
	var req ReasonRequest
	if err := bind(c, h.validate, &req); err != nil {
		return "", err
	}
	return req.Reason, nil
}

// HandleCancel cancels the order when it has not been delivered yet.
func (h *OrderHandler) HandleCancel(c *fiber.Ctx) error {
	reason, err := h.reason(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.Cancel(c.UserContext(), middleware.UserID(c), c.Params("id"), reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled",
		"order":   models.NewOrderView(*order),
	})
}

// HandleRequestReturn opens a return within the return window.
func (h *OrderHandler) HandleRequestReturn(c *fiber.Ctx) error {
	reason, err := h.reason(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	order, err := h.service.RequestReturn(c.UserContext(), middleware.UserID(c), c.Params("id"), reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Return requested",
		"order":   models.NewOrderView(*order),
	})
}

// HandleCancelReturn withdraws a pending return.
func (h *OrderHandler) HandleCancelReturn(c *fiber.Ctx) error {
	order, err := h.service.CancelReturn(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Return cancelled",
		"order":   models.NewOrderView(*order),
	})
}
