package handlers

import (
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// QRHandler handles QR token endpoints
type QRHandler struct {
	tokenService *services.TokenService
}

// NewQRHandler creates a new QR handler
func NewQRHandler(tokenService *services.TokenService) *QRHandler {
	return &QRHandler{
		tokenService: tokenService,
	}
}

// ValidateTokenRequest is the body of a token validation
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// IssueToken handles issuing a QR token for a user
// @Summary Issue QR token
// @Description Sign a short-lived QR token for the user's card. The card is created on first use.
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /qr/users/{userId}/token [post]
func (h *QRHandler) IssueToken(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	issued, err := h.tokenService.IssueToken(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to issue QR token")
	}

	return response.Success(c, "QR token issued successfully", issued)
}

// ValidateToken handles validating a QR token
// @Summary Validate QR token
// @Description Resolve a QR token to its user. Invalid tokens are a normal outcome, not an error.
// @Tags QR
// @Accept json
// @Produce json
// @Param X-Scanner-ID header string true "Scanner ID"
// @Param X-Scanner-Key header string true "Scanner key"
// @Param request body ValidateTokenRequest true "Token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /qr/validate [post]
func (h *QRHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, valid := h.tokenService.ValidateToken(c.UserContext(), req.Token)
	if !valid {
		return response.Success(c, "Token is not valid", fiber.Map{"valid": false})
	}

	return response.Success(c, "Token is valid", fiber.Map{
		"valid":   true,
		"user_id": userID,
	})
}
