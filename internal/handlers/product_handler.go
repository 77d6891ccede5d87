package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/models"
	"urbantales/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProductHandler serves the public catalog and the seller's product management.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers catalog routes and the seller product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, sellerAuth fiber.Handler) {
	catalog := router.Group("/products")
	catalog.Get("/category/:category", h.HandleListByCategory)
	catalog.Get("/:id", h.HandleGetProduct)

	seller := router.Group("/sellers/products", sellerAuth)
	seller.Get("/", h.HandleListSellerProducts)
	seller.Post("/", h.HandleCreateProduct)
	seller.Get("/:id", h.HandleGetSellerProduct)
	seller.Put("/:id", h.HandleUpdateProduct)
	seller.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListByCategory lists products of a category, newest first.
func (h *ProductHandler) HandleListByCategory(c *fiber.Ctx) error {
	products, err := h.service.ListByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleListSellerProducts lists the seller's products, filtered by ?category= when given.
func (h *ProductHandler) HandleListSellerProducts(c *fiber.Ctx) error {
	products, err := h.service.ListSellerProducts(c.UserContext(), middleware.UserID(c), c.Query("category"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

// HandleCreateProduct adds a product owned by the authenticated seller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.service.CreateProduct(c.UserContext(), middleware.UserID(c), &product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetSellerProduct returns one of the seller's own products.
func (h *ProductHandler) HandleGetSellerProduct(c *fiber.Ctx) error {
	product, err := h.service.GetSellerProduct(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct replaces one of the seller's own products.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return respondError(c, h.log, err)
	}
	updated, err := h.service.UpdateProduct(c.UserContext(), middleware.UserID(c), c.Params("id"), &product)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes one of the seller's own products.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
