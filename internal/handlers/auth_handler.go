package handlers

import (
	"urbantales/internal/middleware"
	"urbantales/internal/models"
	"urbantales/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for buyer and seller accounts.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the public auth routes and the seller profile routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, sellerAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)

	sellerAuthRoutes := router.Group("/sellers/auth")
	sellerAuthRoutes.Post("/signup", h.HandleSellerSignup)
	sellerAuthRoutes.Post("/login", h.HandleSellerLogin)

	profile := router.Group("/sellers/profile", sellerAuth)
	profile.Get("/", h.HandleGetProfile)
	profile.Put("/", h.HandleUpdateProfile)
}

// RegisterRequest represents the request body for buyer registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SellerSignupRequest represents the request body for seller signup.
type SellerSignupRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Username string `json:"username" validate:"omitempty,min=3,max=140"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	ShopName string `json:"shopName" validate:"omitempty,max=120"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	Bio      string `json:"bio" validate:"omitempty,max=1000"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileUpdateRequest lists the seller profile fields that may change.
type ProfileUpdateRequest struct {
	ShopName *string `json:"shopName" validate:"omitempty,max=120"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// HandleRegister handles new buyer registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user := models.User{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := h.authService.RegisterBuyer(c.UserContext(), &user); err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin handles buyer login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	token, user, err := h.authService.LoginBuyer(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.WithField("email", req.Email).Info("buyer login failed")
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleSellerSignup creates a seller account and signs it in.
func (h *AuthHandler) HandleSellerSignup(c *fiber.Ctx) error {
	var req SellerSignupRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	token, seller, err := h.authService.SignupSeller(c.UserContext(), services.SellerSignup{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		ShopName: req.ShopName,
		Address:  req.Address,
		Bio:      req.Bio,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":  token,
		"seller": seller,
	})
}

// HandleSellerLogin handles seller login and issues a JWT token.
func (h *AuthHandler) HandleSellerLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	token, seller, err := h.authService.LoginSeller(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.WithField("email", req.Email).Info("seller login failed")
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"seller": seller,
	})
}

// HandleGetProfile returns the authenticated seller's profile.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	seller, err := h.authService.GetSellerProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(seller)
}

// HandleUpdateProfile updates shop name, address, bio and phone.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	seller, err := h.authService.UpdateSellerProfile(c.UserContext(), middleware.UserID(c), services.SellerProfileUpdate{
		ShopName: req.ShopName,
		Address:  req.Address,
		Bio:      req.Bio,
		Phone:    req.Phone,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(seller)
}
