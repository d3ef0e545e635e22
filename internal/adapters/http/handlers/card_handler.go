package handlers

import (
	"saeta-access/internal/adapters/http/middleware"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CardHandler handles identity card endpoints
type CardHandler struct {
	cardService *services.CardService
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{
		cardService: cardService,
	}
}

// CreateCard handles creating a card for a user
// @Summary Create card
// @Description Create an inactive card for a user. Returns the existing card if the user already has one.
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cards/users/{userId} [post]
func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	card, created, err := h.cardService.CreateCard(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to create card")
	}

	if !created {
		return response.Success(c, "User already has a card", toCardResponse(card))
	}
	return response.Created(c, "Card created successfully", toCardResponse(card))
}

// GetCard handles getting a card by ID
// @Summary Get card by ID
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cards/{id} [get]
func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	card, err := h.ownedCard(c)
	if err != nil {
		return err
	}
	if card == nil {
		return nil
	}

	return response.Success(c, "Card retrieved successfully", toCardResponse(card))
}

// GetCardForUser handles getting the card of a user
// @Summary Get card of user
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cards/users/{userId} [get]
func (h *CardHandler) GetCardForUser(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	card, err := h.cardService.GetCardForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get card")
	}

	return response.Success(c, "Card retrieved successfully", toCardResponse(card))
}

// ActivateCard handles activating a card
// @Summary Activate card
// @Description Activate a card for a fresh activation window
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cards/{id}/activate [patch]
func (h *CardHandler) ActivateCard(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid card ID")
	}

	card, err := h.cardService.ActivateCard(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to activate card")
	}

	return response.Success(c, "Card activated successfully", toCardResponse(card))
}

// DeactivateCard handles deactivating a card
// @Summary Deactivate card
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cards/{id}/deactivate [patch]
func (h *CardHandler) DeactivateCard(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid card ID")
	}

	card, err := h.cardService.DeactivateCard(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to deactivate card")
	}

	return response.Success(c, "Card deactivated successfully", toCardResponse(card))
}

// ValidateCard handles checking whether a card may be used now
// @Summary Validate card
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cards/{id}/validate [get]
func (h *CardHandler) ValidateCard(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid card ID")
	}

	result, err := h.cardService.ValidateCard(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to validate card")
	}

	return response.Success(c, "Card validated", result)
}

// RenewToken handles issuing a fresh QR token for an active card
// @Summary Renew QR token
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /cards/{id}/renew-qr [get]
func (h *CardHandler) RenewToken(c *fiber.Ctx) error {
	card, err := h.ownedCard(c)
	if err != nil {
		return err
	}
	if card == nil {
		return nil
	}

	issued, err := h.cardService.RenewToken(c.UserContext(), card.ID)
	if err != nil {
		return respondError(c, err, "Failed to renew QR token")
	}

	return response.Success(c, "QR token renewed successfully", issued)
}

// ownedCard loads the card named by :id and checks that the caller is staff
// or its owner. A nil card with a nil error means the response is written.
func (h *CardHandler) ownedCard(c *fiber.Ctx) (*domain.Card, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, response.BadRequest(c, "Invalid card ID")
	}

	card, err := h.cardService.GetCard(c.UserContext(), id)
	if err != nil {
		return nil, respondError(c, err, "Failed to get card")
	}
	if !middleware.IsStaff(c) && !middleware.IsSelf(c, card.UserID) {
		return nil, response.Forbidden(c, "You can only access your own card")
	}
	return card, nil
}
