package handlers

import (
	"time"

	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/pagination"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccessLogHandler handles access history endpoints
type AccessLogHandler struct {
	accessService *services.AccessService
}

// NewAccessLogHandler creates a new access log handler
func NewAccessLogHandler(accessService *services.AccessService) *AccessLogHandler {
	return &AccessLogHandler{
		accessService: accessService,
	}
}

// History handles listing the newest access records of a user
// @Summary User access history
// @Description Newest records first
// @Tags Access Logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param limit query int false "Number of records" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /access-logs/users/{userId} [get]
func (h *AccessLogHandler) History(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	params := pagination.GetParamsWithDefault(c, services.DefaultHistoryLimit)

	records, err := h.accessService.History(c.UserContext(), userID, params.Limit)
	if err != nil {
		return respondError(c, err, "Failed to get access history")
	}

	return response.Success(c, "Access history retrieved successfully", toAccessLogResponses(records))
}

// Latest handles getting the most recent access record of a user
// @Summary Latest access record
// @Tags Access Logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /access-logs/users/{userId}/latest [get]
func (h *AccessLogHandler) Latest(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	record, err := h.accessService.Latest(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get latest access record")
	}

	return response.Success(c, "Latest access record retrieved successfully", toAccessLogResponse(record))
}

// Between handles listing access records in a time range
// @Summary Access records between two instants
// @Description Oldest first, both bounds inclusive, paginated
// @Tags Access Logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param from query string true "Start (RFC3339)"
// @Param to query string true "End (RFC3339)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /access-logs [get]
func (h *AccessLogHandler) Between(c *fiber.Ctx) error {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return response.BadRequest(c, "Invalid 'from', expected RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return response.BadRequest(c, "Invalid 'to', expected RFC3339")
	}
	params := pagination.GetParams(c)

	records, err := h.accessService.Between(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err, "Failed to get access records")
	}

	page := toAccessLogResponses(pagination.Page(records, params))
	return response.Success(c, "Access records retrieved successfully",
		pagination.NewResponse(page, params, int64(len(records))))
}
