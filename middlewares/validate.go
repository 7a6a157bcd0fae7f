package middlewares

import (
	"taskboard-backend/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// BindAndValidate parses the request body into dst and validates it.
// Parse errors become VALIDATION_FAILED client errors; validation issues
// surface as validator.ValidationErrors for the central error handler.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return validate.Struct(dst)
}
