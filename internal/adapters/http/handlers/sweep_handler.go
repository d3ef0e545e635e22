package handlers

import (
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SweepHandler lets administrators run the expiry sweeps on demand
type SweepHandler struct {
	sweepService *services.SweepService
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(sweepService *services.SweepService) *SweepHandler {
	return &SweepHandler{
		sweepService: sweepService,
	}
}

// RunSweeps handles running the demotion and expiry warning sweeps
// @Summary Run expiry sweeps
// @Description Demote expired memberships and send expiry warnings now. Per-user failures are counted, not fatal.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /admin/sweeps [post]
func (h *SweepHandler) RunSweeps(c *fiber.Ctx) error {
	reports := h.sweepService.RunExpirySweeps(c.UserContext())

	for _, r := range reports {
		if r.Error != "" {
			return c.Status(fiber.StatusInternalServerError).JSON(response.Response{
				Success: false,
				Error:   "Sweep " + r.Job + " aborted",
				Data:    reports,
			})
		}
	}

	return response.Success(c, "Expiry sweeps completed", reports)
}
