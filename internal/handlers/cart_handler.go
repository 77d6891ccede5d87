package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CartHandler handles HTTP requests for the buyer's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *logrus.Logger) *CartHandler {
	return &CartHandler{service: service, validate: newValidator(), log: log}
}

// RegisterRoutes registers the cart routes behind buyer authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router, buyerAuth fiber.Handler) {
	cart := router.Group("/cart", buyerAuth)
	cart.Get("/", h.HandleGetCart)
	cart.Delete("/", h.HandleClearCart)
	cart.Post("/items", h.HandleAddItem)
	cart.Put("/items/:productId", h.HandleUpdateItem)
	cart.Delete("/items/:productId", h.HandleRemoveItem)
}

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"qty" validate:"required,gt=0"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:productId.
type UpdateCartItemRequest struct {
	Quantity int `json:"qty"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddCartItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	cart, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(cart)
}

// HandleUpdateItem sets a line's quantity; zero removes the line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateCartItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	cart, err := h.service.UpdateQuantity(c.UserContext(), middleware.UserID(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
