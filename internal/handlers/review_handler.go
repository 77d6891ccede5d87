package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ReviewHandler handles product reviews, likes and replies.
type ReviewHandler struct {
	service  *services.ReviewService
	auth     *services.AuthService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, auth *services.AuthService, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		auth:     auth,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the public review reads, then the buyer-only writes.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, buyerAuth fiber.Handler) {
	public := router.Group("/reviews/product")
	public.Get("/:productId", h.HandleListByProduct)
	public.Get("/:productId/summary", h.HandleSummary)

	reviews := router.Group("/reviews", buyerAuth)
	reviews.Post("/", h.HandleCreate)
	reviews.Put("/:id", h.HandleUpdate)
	reviews.Delete("/:id", h.HandleDelete)
	reviews.Post("/:id/like", h.HandleToggleLike)
	reviews.Post("/:id/reply", h.HandleReply)
}

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Rating    int      `json:"rating" validate:"required,min=1,max=5"`
	Comment   string   `json:"comment" validate:"required,max=500"`
	Images    []string `json:"images" validate:"omitempty,dive,url"`
}

// UpdateReviewRequest is the body of PUT /reviews/:id.
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

// ReplyRequest is the body of POST /reviews/:id/reply.
type ReplyRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (h *ReviewHandler) HandleListByProduct(c *fiber.Ctx) error {
	reviews, err := h.service.ListByProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(reviews)
}

// HandleSummary returns the average, count and star distribution of a product.
func (h *ReviewHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}

// authorName looks up the display name of the authenticated buyer.
func (h *ReviewHandler) authorName(c *fiber.Ctx) (string, error) {
	user, err := h.auth.GetBuyer(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func (h *ReviewHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	name, err := h.authorName(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	review, err := h.service.Create(c.UserContext(), middleware.UserID(c), name, services.ReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Images:    req.Images,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateReviewRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	review, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}

// HandleToggleLike likes the review, or removes the caller's like.
func (h *ReviewHandler) HandleToggleLike(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	review, err := h.service.ToggleLike(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"helpful": review.Helpful,
		"liked":   review.LikedByUser(userID),
		"review":  review,
	})
}

func (h *ReviewHandler) HandleReply(c *fiber.Ctx) error {
	var req ReplyRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	name, err := h.authorName(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	review, err := h.service.AddReply(c.UserContext(), c.Params("id"), middleware.UserID(c), name, req.Text)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}
