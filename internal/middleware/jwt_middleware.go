package middleware

import (
	"strings"

	"urbantales/internal/apperror"
	"urbantales/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// TokenValidator resolves a bearer token to an identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"kind":    apperror.KindUnauthorized,
	})
}

// AuthRequired is a Fiber middleware to check for a valid JWT token carrying the given role.
func AuthRequired(validator TokenValidator, role string, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("JWT validation failed")
			return unauthorized(c, "Invalid or expired token")
		}
		if claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "This resource requires the " + role + " role",
				"kind":    apperror.KindForbidden,
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// UserID returns the authenticated identity stored by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
