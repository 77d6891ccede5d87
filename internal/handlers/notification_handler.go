package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// NotificationHandler serves the seller's notification list.
type NotificationHandler struct {
	service *services.NotificationService
	log     *logrus.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, log: log}
}

// RegisterRoutes registers notification routes behind seller authentication.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router, sellerAuth fiber.Handler) {
	notifications := router.Group("/sellers/notifications", sellerAuth)
	notifications.Get("/", h.HandleList)
	notifications.Put("/read-all", h.HandleMarkAllRead)
}

func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

func (h *NotificationHandler) HandleMarkAllRead(c *fiber.Ctx) error {
	updated, err := h.service.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}
