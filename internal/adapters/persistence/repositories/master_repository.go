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

// zoneRepository implements services.ZoneStore
type zoneRepository struct {
	db *gorm.DB
}

// NewZoneRepository creates a new access zone repository
func NewZoneRepository(db *gorm.DB) services.ZoneStore {
	return &zoneRepository{db: db}
}

// Exists checks if a zone exists
func (r *zoneRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccessZone{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// profileRepository implements services.ProfileStore
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new access profile repository
func NewProfileRepository(db *gorm.DB) services.ProfileStore {
	return &profileRepository{db: db}
}

// GetByID loads a profile together with its zone ids and time windows.
// Each part is an explicit query; nothing is lazily fetched later.
func (r *profileRepository) GetByID(ctx context.Context, id uint) (*domain.AccessProfile, error) {
	db := r.db.WithContext(ctx)

	var profile models.AccessProfile
	if err := db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get access profile %d: %w", id, err)
	}

	var zoneIDs []uint
	err := db.Model(&models.ProfileZone{}).
		Where("profile_id = ?", id).
		Order("zone_id ASC").
		Pluck("zone_id", &zoneIDs).Error
	if err != nil {
		return nil, fmt.Errorf("load zones of profile %d: %w", id, err)
	}

	var restrictions []models.ProfileTimeRestriction
	err = db.Where("profile_id = ?", id).Order("id ASC").Find(&restrictions).Error
	if err != nil {
		return nil, fmt.Errorf("load time restrictions of profile %d: %w", id, err)
	}

	windows := make([]domain.TimeWindow, 0, len(restrictions))
	for _, tr := range restrictions {
		w, err := domain.NewTimeWindow(tr.DayOfWeek, tr.StartTime, tr.EndTime)
		if err != nil {
			return nil, fmt.Errorf("profile %d restriction %d: %w", id, tr.ID, err)
		}
		windows = append(windows, w)
	}

	return &domain.AccessProfile{
		ID:           profile.ID,
		Name:         profile.Name,
		Description:  profile.Description,
		AllowedZones: zoneIDs,
		Windows:      windows,
	}, nil
}
