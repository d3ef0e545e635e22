package services

import (
	"context"
	"errors"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/pkg/clock"

	"go.uber.org/zap"
)

// Card validation outcomes
const (
	CardValid          = "valid"
	CardNotActive      = "card is not active"
	CardExpired        = "card activation has expired"
	CardUserBlocked    = "user status blocks access"
	CardOutstandingDue = "user has outstanding debt"
)

// CardValidation is the result of checking whether a card may be used now
type CardValidation struct {
	CardID uint   `json:"card_id"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// CardService manages identity cards
type CardService struct {
	store  Store
	tokens *TokenService
	clock  clock.Clock
	window time.Duration
	log    *zap.Logger
}

// NewCardService creates a new card service
func NewCardService(store Store, tokens *TokenService, clk clock.Clock, log *zap.Logger) *CardService {
	return &CardService{
		store:  store,
		tokens: tokens,
		clock:  clk,
		window: tokens.cfg.ActivationWindow,
		log:    log.Named("card"),
	}
}

// CreateCard creates an inactive card for a user. If the user already has
// one it is returned with created=false.
func (s *CardService) CreateCard(ctx context.Context, userID uint) (card *domain.Card, created bool, err error) {
	err = s.store.Atomic(ctx, func(tx Store) error {
		if _, err := tx.Users().GetForUpdate(ctx, userID); err != nil {
			return err
		}

		existing, err := tx.Cards().GetByUserID(ctx, userID)
		if err == nil {
			card, created = existing, false
			return nil
		}
		if !errors.Is(err, domain.ErrCardNotFound) {
			return err
		}

		card, err = createCard(ctx, tx.Cards(), userID, s.clock.Now(), s.window)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("card created", zap.Uint("user_id", userID), zap.Uint("card_id", card.ID))
	}
	return card, created, nil
}

// GetCard gets a card by ID
func (s *CardService) GetCard(ctx context.Context, id uint) (*domain.Card, error) {
	return s.store.Cards().GetByID(ctx, id)
}

// GetCardForUser gets the card owned by a user
func (s *CardService) GetCardForUser(ctx context.Context, userID uint) (*domain.Card, error) {
	return s.store.Cards().GetByUserID(ctx, userID)
}

// ActivateCard activates a card for a fresh activation window
func (s *CardService) ActivateCard(ctx context.Context, id uint) (*domain.Card, error) {
	return s.update(ctx, id, func(card *domain.Card, now time.Time) {
		card.IsActive = true
		card.ExpiresAt = now.Add(s.window)
	})
}

// DeactivateCard deactivates a card. Tokens bound to it stop validating.
func (s *CardService) DeactivateCard(ctx context.Context, id uint) (*domain.Card, error) {
	return s.update(ctx, id, func(card *domain.Card, _ time.Time) {
		card.IsActive = false
	})
}

func (s *CardService) update(ctx context.Context, id uint, mutate func(*domain.Card, time.Time)) (*domain.Card, error) {
	var card *domain.Card
	err := s.store.Atomic(ctx, func(tx Store) error {
		var err error
		if card, err = tx.Cards().GetByID(ctx, id); err != nil {
			return err
		}
		mutate(card, s.clock.Now())
		return tx.Cards().Save(ctx, card)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("card updated", zap.Uint("card_id", id), zap.Bool("active", card.IsActive))
	return card, nil
}

// ValidateCard checks the card and its owner's eligibility
func (s *CardService) ValidateCard(ctx context.Context, id uint) (*CardValidation, error) {
	card, err := s.store.Cards().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, card.UserID)
	if err != nil {
		return nil, err
	}

	result := &CardValidation{CardID: id, Valid: true, Reason: CardValid}
	switch {
	case !card.IsActive:
		result.Valid, result.Reason = false, CardNotActive
	case !card.UsableAt(s.clock.Now()):
		result.Valid, result.Reason = false, CardExpired
	case user.Status.BlocksAccess():
		result.Valid, result.Reason = false, CardUserBlocked
	case user.HasDebt && user.HasMembership():
		result.Valid, result.Reason = false, CardOutstandingDue
	}
	return result, nil
}

// RenewToken issues a fresh QR token for an active card
func (s *CardService) RenewToken(ctx context.Context, id uint) (*IssuedToken, error) {
	return s.tokens.renew(ctx, id)
}
