package handlers

import (
	"context"
	"errors"
	"strconv"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP response. fallback is the
// message used for unexpected failures.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrCardNotFound):
		return response.NotFound(c, "Card not found")
	case errors.Is(err, domain.ErrZoneNotFound):
		return response.NotFound(c, "Access zone not found")
	case errors.Is(err, domain.ErrProfileNotFound):
		return response.NotFound(c, "Access profile not found")
	case errors.Is(err, domain.ErrStatusNotFound):
		return response.BadRequest(c, "Unknown user status")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.Is(err, domain.ErrCardInactive):
		return response.Conflict(c, "Card is not active")
	case errors.Is(err, domain.ErrIllegalTransition):
		return response.Conflict(c, "Status transition not allowed")
	case errors.Is(err, domain.ErrStatusChanged):
		return response.Conflict(c, "User status changed concurrently, retry")
	case errors.Is(err, context.DeadlineExceeded):
		return response.GatewayTimeout(c, "Request timed out")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// paramID parses a positive numeric route parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
