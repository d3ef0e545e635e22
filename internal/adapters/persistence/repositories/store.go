package repositories

import (
	"context"

	"saeta-access/internal/core/services"

	"gorm.io/gorm"
)

// Store implements services.Store on top of gorm
type Store struct {
	db *gorm.DB
}

// NewStore creates a gorm backed store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() services.UserStore                 { return NewUserRepository(s.db) }
func (s *Store) Cards() services.CardStore                 { return NewCardRepository(s.db) }
func (s *Store) Zones() services.ZoneStore                 { return NewZoneRepository(s.db) }
func (s *Store) Profiles() services.ProfileStore           { return NewProfileRepository(s.db) }
func (s *Store) AccessLogs() services.AccessLogStore       { return NewAccessLogRepository(s.db) }
func (s *Store) Notifications() services.NotificationStore { return NewNotificationRepository(s.db) }
func (s *Store) Scanners() services.ScannerStore           { return NewScannerRepository(s.db) }

// Atomic runs fn in a database transaction. Nested calls become savepoints.
func (s *Store) Atomic(ctx context.Context, fn func(tx services.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

var _ services.Store = (*Store)(nil)
