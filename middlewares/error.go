package middlewares

import (
	"errors"
	"log"
	"time"

	"taskboard-backend/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the single boundary that renders every error as the
// uniform {"error":{code,message,details,timestamp,path}} body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Taxonomy errors (carry their own status + code)
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		return renderError(c, ae.Status, ae.Code, ae.Message, ae.Details)
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return renderError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", out)
	}

	// 3) Fiber errors (framework-raised: 404 route misses, body limit, ...)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return renderError(c, fe.Code, codeForStatus(fe.Code), fe.Message, nil)
	}

	// 4) Unknown errors (500, logged, no internal detail leaked)
	log.Printf("internal error: %v", err)
	return renderError(c, fiber.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func renderError(c *fiber.Ctx, status int, code, message string, details any) error {
	body := fiber.Map{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      c.Path(),
	}
	if details != nil {
		body["details"] = details
	}
	return c.Status(status).JSON(fiber.Map{"error": body})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return "AUTH_INVALID"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 400 && status < 500 {
		return "VALIDATION_FAILED"
	}
	return "INTERNAL"
}
