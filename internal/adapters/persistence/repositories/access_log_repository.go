package repositories

import (
	"context"
	"fmt"
	"time"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"gorm.io/gorm"
)

// accessLogRepository implements services.AccessLogStore
type accessLogRepository struct {
	db *gorm.DB
}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository(db *gorm.DB) services.AccessLogStore {
	return &accessLogRepository{db: db}
}

// Append inserts a record and sets its ID
func (r *accessLogRepository) Append(ctx context.Context, record *domain.AccessDecisionRecord) error {
	row := models.AccessLogFromDomain(record)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	record.ID = row.ID
	return nil
}

// ListByUser gets the latest records of a user (History)
func (r *accessLogRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]*domain.AccessDecisionRecord, error) {
	var rows []*models.AccessLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("access_time DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list access logs of user %d: %w", userID, err)
	}
	return toDomainRecords(rows), nil
}

// ListBetween gets records with from <= access_time <= to
func (r *accessLogRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.AccessDecisionRecord, error) {
	var rows []*models.AccessLog
	err := r.db.WithContext(ctx).
		Where("access_time BETWEEN ? AND ?", from, to).
		Order("access_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list access logs between %s and %s: %w", from, to, err)
	}
	return toDomainRecords(rows), nil
}

func toDomainRecords(rows []*models.AccessLog) []*domain.AccessDecisionRecord {
	out := make([]*domain.AccessDecisionRecord, 0, len(rows))
	for _, l := range rows {
		out = append(out, l.ToDomain())
	}
	return out
}
