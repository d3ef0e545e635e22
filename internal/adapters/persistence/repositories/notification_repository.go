package repositories

import (
	"context"
	"fmt"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"gorm.io/gorm"
)

// notificationRepository implements services.NotificationStore
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) services.NotificationStore {
	return &notificationRepository{db: db}
}

// Create stores a notification for later delivery
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	row := &models.Notification{
		UserID:           n.UserID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: string(n.Kind),
		CreatedAt:        n.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create notification for user %d: %w", n.UserID, err)
	}
	n.ID = row.ID
	return nil
}
