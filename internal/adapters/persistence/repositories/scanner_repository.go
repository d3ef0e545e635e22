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
)

// scannerRepository implements services.ScannerStore
type scannerRepository struct {
	db *gorm.DB
}

// NewScannerRepository creates a new scanner repository
func NewScannerRepository(db *gorm.DB) services.ScannerStore {
	return &scannerRepository{db: db}
}

// GetByID gets a scanner by ID
func (r *scannerRepository) GetByID(ctx context.Context, id string) (*domain.Scanner, error) {
	var scanner models.Scanner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&scanner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrScannerNotFound
		}
		return nil, fmt.Errorf("get scanner %s: %w", id, err)
	}
	return scanner.ToDomain(), nil
}

// Create registers a scanner
func (r *scannerRepository) Create(ctx context.Context, s *domain.Scanner) error {
	row := &models.Scanner{
		ID:       s.ID,
		Location: s.Location,
		KeyHash:  s.KeyHash,
		IsActive: s.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create scanner %s: %w", s.ID, err)
	}
	return nil
}

// Touch records when a scanner was last seen
func (r *scannerRepository) Touch(ctx context.Context, id string, seen time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Scanner{}).
		Where("id = ?", id).
		Update("last_seen", seen).Error
}
