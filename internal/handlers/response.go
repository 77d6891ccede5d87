package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"urbantales/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"message", "kind"} with the matching status.
// Dependency failures are logged and their cause is not exposed.
func respondError(c *fiber.Ctx, log *logrus.Logger, err error) error {
	kind := apperror.KindOf(err)
	body := fiber.Map{
		"message": apperror.Message(err),
		"kind":    kind,
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, e := range verrs {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		body["errors"] = fields
	}

	if kind == apperror.KindDependency {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
	}
	return c.Status(statusFor(kind)).JSON(body)
}

// bind parses the request body into req and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperror.Validation("Invalid request body: %v", err)
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &apperror.Error{Kind: apperror.KindValidation, Message: "Validation failed", Err: verrs}
		}
		return apperror.Validation("Validation failed: %v", err)
	}
	return nil
}
