package handlers

import (
	"fmt"

	"saeta-access/internal/adapters/http/middleware"
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccessHandler handles checkpoint scans and operator status changes
type AccessHandler struct {
	accessService *services.AccessService
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
	}
}

// ScanRequest is the body of a checkpoint scan
type ScanRequest struct {
	Token           string `json:"token"`
	ZoneID          *uint  `json:"zone_id"`
	ScannerLocation string `json:"scanner_location"`
}

// ChangeStatusRequest is the body of a manual status change
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// ActivateRequest is the body of a checkpoint activation
type ActivateRequest struct {
	ZoneID          *uint  `json:"zone_id"`
	ScannerID       string `json:"scanner_id"`
	ScannerLocation string `json:"scanner_location"`
}

// Scan handles an access attempt at a checkpoint
// @Summary Decide access
// @Description Validate the scanned token, evaluate the user's eligibility and record the decision. Denials are returned with 200.
// @Tags Access
// @Accept json
// @Produce json
// @Param X-Scanner-ID header string true "Scanner ID"
// @Param X-Scanner-Key header string true "Scanner key"
// @Param request body ScanRequest true "Scan"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /access/scan [post]
func (h *AccessHandler) Scan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	scannerID, _ := c.Locals(middleware.LocalScannerID).(string)
	location, _ := c.Locals(middleware.LocalScannerLocation).(string)
	if req.ScannerLocation != "" {
		location = req.ScannerLocation
	}

	record, err := h.accessService.DecideAccess(c.UserContext(), services.ScanRequest{
		Token:           req.Token,
		ZoneID:          req.ZoneID,
		ScannerID:       scannerID,
		ScannerLocation: location,
	})
	if err != nil {
		return respondError(c, err, "Failed to decide access")
	}

	message := "Access granted"
	if !record.Granted {
		message = "Access denied"
	}
	return response.Success(c, message, toAccessLogResponse(record))
}

// ChangeStatus handles a manual status change
// @Summary Change user status
// @Description Move a user to any status. Always writes a STATUS_CHANGE audit record.
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param request body ChangeStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /access/users/{userId}/status [post]
func (h *AccessHandler) ChangeStatus(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.accessService.ManualTransition(c.UserContext(), userID, req.Status, operatorActor(c))
	if err != nil {
		return respondError(c, err, "Failed to change user status")
	}

	return response.Success(c, "User status updated successfully", toAccessLogResponse(record))
}

// Activate handles activating a user and their card at a checkpoint
// @Summary Activate user card
// @Description Set the user ACTIVE, activate their card for a fresh window and write an ACTIVATION record
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param request body ActivateRequest false "Checkpoint"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /access/users/{userId}/activate [post]
func (h *AccessHandler) Activate(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req ActivateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if req.ScannerID == "" {
		req.ScannerID = operatorActor(c)
	}

	record, err := h.accessService.ActivateUserCard(c.UserContext(), userID, services.ActivationRequest{
		ZoneID:          req.ZoneID,
		ScannerID:       req.ScannerID,
		ScannerLocation: req.ScannerLocation,
	})
	if err != nil {
		return respondError(c, err, "Failed to activate user")
	}

	return response.Success(c, "User activated successfully", toAccessLogResponse(record))
}

// operatorActor names the authenticated operator on audit records
func operatorActor(c *fiber.Ctx) string {
	if username, ok := c.Locals(middleware.LocalUsername).(string); ok && username != "" {
		return "operator:" + username
	}
	if id, ok := c.Locals(middleware.LocalUserID).(uint); ok {
		return fmt.Sprintf("operator:%d", id)
	}
	return "operator"
}
