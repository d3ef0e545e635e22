package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements services.UserStore
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) services.UserStore {
	return &userRepository{db: db}
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate gets a user by ID and holds a row lock until the transaction ends
func (r *userRepository) GetForUpdate(ctx context.Context, id uint) (*domain.User, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *userRepository) get(db *gorm.DB, id uint) (*domain.User, error) {
	var user models.User
	err := db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user.ToDomain(), nil
}

// UpdateStatus writes the status column only
func (r *userRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update status of user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// FindByStatusExpiredBefore finds users in status whose membership expired before t
func (r *userRepository) FindByStatusExpiredBefore(ctx context.Context, status domain.Status, t time.Time) ([]*domain.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Where("membership_expiry IS NOT NULL AND membership_expiry < ?", t).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("find expired users: %w", err)
	}
	return toDomainUsers(users), nil
}

// FindExpiringBetween finds users with from <= membership_expiry < to
func (r *userRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*domain.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("membership_expiry >= ? AND membership_expiry < ?", from, to).
		Order("membership_expiry ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("find expiring users: %w", err)
	}
	return toDomainUsers(users), nil
}

func toDomainUsers(rows []*models.User) []*domain.User {
	out := make([]*domain.User, 0, len(rows))
	for _, u := range rows {
		out = append(out, u.ToDomain())
	}
	return out
}
