package services

import (
	"context"
	"time"

	"saeta-access/internal/core/domain"
)

// Store is the unit of work over every collaborator the access core uses.
// Atomic runs fn against a transactional view; if fn returns an error nothing
// written through that view persists.
type Store interface {
	Users() UserStore
	Cards() CardStore
	Zones() ZoneStore
	Profiles() ProfileStore
	AccessLogs() AccessLogStore
	Notifications() NotificationStore
	Scanners() ScannerStore
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// UserStore reads and updates user eligibility state
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	// GetForUpdate locks the row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uint) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uint, status domain.Status) error
	FindByStatusExpiredBefore(ctx context.Context, status domain.Status, t time.Time) ([]*domain.User, error)
	// FindExpiringBetween returns users with from <= membership expiry < to
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*domain.User, error)
}

// CardStore persists identity cards
type CardStore interface {
	GetByID(ctx context.Context, id uint) (*domain.Card, error)
	GetByUserID(ctx context.Context, userID uint) (*domain.Card, error)
	ExistsByCardNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, card *domain.Card) error
	Save(ctx context.Context, card *domain.Card) error
}

// ZoneStore resolves access zones
type ZoneStore interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// ProfileStore loads access profiles with their zones and windows
type ProfileStore interface {
	GetByID(ctx context.Context, id uint) (*domain.AccessProfile, error)
}

// AccessLogStore is the append-only audit log
type AccessLogStore interface {
	Append(ctx context.Context, record *domain.AccessDecisionRecord) error
	// ListByUser returns the newest records first
	ListByUser(ctx context.Context, userID uint, limit int) ([]*domain.AccessDecisionRecord, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.AccessDecisionRecord, error)
}

// NotificationStore accepts user-facing notifications for delivery
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// ScannerStore persists registered checkpoint scanners
type ScannerStore interface {
	GetByID(ctx context.Context, id string) (*domain.Scanner, error)
	Create(ctx context.Context, scanner *domain.Scanner) error
	Touch(ctx context.Context, id string, seen time.Time) error
}
