package repositories

import (
	"context"
	"errors"
	"fmt"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"gorm.io/gorm"
)

// cardRepository implements services.CardStore
type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new identity card repository
func NewCardRepository(db *gorm.DB) services.CardStore {
	return &cardRepository{db: db}
}

// GetByID gets a card by ID
func (r *cardRepository) GetByID(ctx context.Context, id uint) (*domain.Card, error) {
	var card models.IdentityCard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		return nil, cardError(err)
	}
	return card.ToDomain(), nil
}

// GetByUserID gets the card owned by a user
func (r *cardRepository) GetByUserID(ctx context.Context, userID uint) (*domain.Card, error) {
	var card models.IdentityCard
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&card).Error
	if err != nil {
		return nil, cardError(err)
	}
	return card.ToDomain(), nil
}

// ExistsByCardNumber checks if a card number is taken
func (r *cardRepository) ExistsByCardNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.IdentityCard{}).Where("card_number = ?", number).Count(&count).Error
	return count > 0, err
}

// Create inserts a card and sets its ID
func (r *cardRepository) Create(ctx context.Context, card *domain.Card) error {
	row := models.IdentityCardFromDomain(card)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create card for user %d: %w", card.UserID, err)
	}
	card.ID = row.ID
	return nil
}

// Save updates every mutable card column
func (r *cardRepository) Save(ctx context.Context, card *domain.Card) error {
	row := models.IdentityCardFromDomain(card)
	err := r.db.WithContext(ctx).
		Model(&models.IdentityCard{ID: card.ID}).
		Select("expiry_date", "last_qr_code", "last_qr_timestamp", "is_active").
		Updates(row).Error
	if err != nil {
		return fmt.Errorf("save card %d: %w", card.ID, err)
	}
	return nil
}

func cardError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrCardNotFound
	}
	return fmt.Errorf("get card: %w", err)
}
