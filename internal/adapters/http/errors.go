package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, source_unavailable, schema_error, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps pipeline failures onto HTTP statuses.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrSourceUnavailable):
		return newError(c, fiber.StatusServiceUnavailable, "source_unavailable", err.Error())
	case errors.Is(err, domain.ErrSchema):
		return newError(c, fiber.StatusBadGateway, "schema_error", err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", slog.String("error", err.Error()))
		return errInternal(c, err.Error())
	}
}
