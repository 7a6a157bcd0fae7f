package apperrors

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error is the API error taxonomy. Every failure that reaches the client is
// one of these; middlewares.ErrorHandler renders it as the uniform
// {"error":{...}} body.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy carrying structured detail data.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func AuthMissing() *Error {
	return New(fiber.StatusUnauthorized, "AUTH_MISSING", "authentication required")
}

func AuthInvalid() *Error {
	return New(fiber.StatusUnauthorized, "AUTH_INVALID", "invalid or expired token")
}

func Forbidden(message string) *Error {
	return New(fiber.StatusForbidden, "FORBIDDEN", message)
}

func HighPriorityForbidden() *Error {
	return New(fiber.StatusForbidden, "HIGH_PRIORITY_FORBIDDEN",
		"high priority requires an active premium subscription or admin role")
}

func Validation(message string) *Error {
	return New(fiber.StatusBadRequest, "VALIDATION_FAILED", message)
}

func IdempotencyKeyMissing() *Error {
	return New(fiber.StatusBadRequest, "IDEMPOTENCY_KEY_MISSING", "Idempotency-Key header is required")
}

func IdempotencyConflict() *Error {
	return New(fiber.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency-Key reused with a different request")
}

func IdempotencyInFlight() *Error {
	return New(fiber.StatusConflict, "IDEMPOTENCY_IN_FLIGHT", "a request with this Idempotency-Key is still in flight, retry shortly")
}

func RateLimited() *Error {
	return New(fiber.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
}

func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, "NOT_FOUND", message)
}

func Internal() *Error {
	return New(fiber.StatusInternalServerError, "INTERNAL", "internal server error")
}
