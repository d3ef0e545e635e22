package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/metrics"
	"saeta-access/internal/pkg/clock"
	"saeta-access/internal/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssuedToken is a freshly signed QR token and the URL the QR code encodes
type IssuedToken struct {
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirect_url"`
	CardID      uint      `json:"card_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenService issues and validates QR tokens
type TokenService struct {
	store Store
	cfg   config.AccessConfig
	clock clock.Clock
	log   *zap.Logger
}

// NewTokenService creates a new token service. cfg is copied.
func NewTokenService(store Store, cfg config.AccessConfig, clk clock.Clock, log *zap.Logger) *TokenService {
	return &TokenService{
		store: store,
		cfg:   cfg,
		clock: clk,
		log:   log.Named("token"),
	}
}

// IssueToken signs a new token for the user's card, creating an inactive card
// on first use. Earlier tokens stay valid until their own expiry.
func (s *TokenService) IssueToken(ctx context.Context, userID uint) (*IssuedToken, error) {
	now := s.clock.Now()

	var issued *IssuedToken
	err := s.store.Atomic(ctx, func(tx Store) error {
		// The user row lock serialises lazy card creation per user.
		if _, err := tx.Users().GetForUpdate(ctx, userID); err != nil {
			return err
		}

		card, err := tx.Cards().GetByUserID(ctx, userID)
		if errors.Is(err, domain.ErrCardNotFound) {
			card, err = createCard(ctx, tx.Cards(), userID, now, s.cfg.ActivationWindow)
			if err == nil {
				s.log.Info("card created on first token request", zap.Uint("user_id", userID), zap.Uint("card_id", card.ID))
			}
		}
		if err != nil {
			return err
		}

		issued, err = s.issueFor(ctx, tx.Cards(), card, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// renew issues a token for an existing card. Inactive cards are rejected
// before anything is written.
func (s *TokenService) renew(ctx context.Context, cardID uint) (*IssuedToken, error) {
	now := s.clock.Now()

	var issued *IssuedToken
	err := s.store.Atomic(ctx, func(tx Store) error {
		card, err := tx.Cards().GetByID(ctx, cardID)
		if err != nil {
			return err
		}
		if !card.IsActive {
			return domain.ErrCardInactive
		}
		issued, err = s.issueFor(ctx, tx.Cards(), card, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// issueFor signs at whole-second precision so ExpiresAt matches the exp
// claim exactly.
func (s *TokenService) issueFor(ctx context.Context, cards CardStore, card *domain.Card, now time.Time) (*IssuedToken, error) {
	now = now.Truncate(time.Second)
	token, err := jwt.GenerateQRToken(card.UserID, card.ID, uuid.NewString(), s.cfg.Issuer, s.cfg.QRSecret, now, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign qr token: %w", err)
	}

	card.LastToken = token
	card.LastTokenIssued = &now
	if err := cards.Save(ctx, card); err != nil {
		return nil, err
	}

	metrics.TokensIssued.Inc()
	return &IssuedToken{
		Token:       token,
		RedirectURL: s.cfg.QRRedirectURL + token,
		CardID:      card.ID,
		ExpiresAt:   now.Add(s.cfg.TokenTTL),
	}, nil
}

// ValidateToken resolves a token to its user id. It fails closed: any
// problem with the token or its card yields ok=false, never an error.
func (s *TokenService) ValidateToken(ctx context.Context, token string) (uint, bool) {
	return s.validate(ctx, s.store.Cards(), token)
}

func (s *TokenService) validate(ctx context.Context, cards CardStore, token string) (uint, bool) {
	userID, reason := s.resolve(ctx, cards, token)
	if reason != "" {
		metrics.TokenValidations.WithLabelValues("invalid").Inc()
		s.log.Debug("token rejected", zap.String("reason", reason))
		return 0, false
	}
	metrics.TokenValidations.WithLabelValues("valid").Inc()
	return userID, true
}

// resolve returns the user id or a non-empty rejection reason
func (s *TokenService) resolve(ctx context.Context, cards CardStore, token string) (uint, string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "empty token"
	}

	claims, err := jwt.ParseQRToken(token, s.cfg.QRSecret, s.cfg.Issuer, s.clock.Now)
	if err != nil {
		return 0, err.Error()
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, "bad subject"
	}

	card, err := cards.GetByID(ctx, claims.CardID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("card lookup failed during validation", zap.Uint("card_id", claims.CardID), zap.Error(err))
		}
		return 0, "card unavailable"
	}
	if card.UserID != userID {
		return 0, "card does not belong to subject"
	}
	if !card.UsableAt(s.clock.Now()) {
		return 0, "card inactive or activation expired"
	}
	return userID, ""
}

// createCard inserts a new inactive card with a unique number
func createCard(ctx context.Context, cards CardStore, userID uint, now time.Time, window time.Duration) (*domain.Card, error) {
	number, err := newCardNumber(ctx, cards)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		UserID:     userID,
		CardNumber: number,
		IssuedAt:   now,
		ExpiresAt:  now.Add(window),
		SecretRef:  uuid.NewString(),
		IsActive:   false,
	}
	if err := cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func newCardNumber(ctx context.Context, cards CardStore) (string, error) {
	for i := 0; i < 5; i++ {
		number := "CARD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
		taken, err := cards.ExistsByCardNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", errors.New("could not allocate a unique card number")
}
