package services

import (
	"fmt"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/pkg/clock"
)

// NotificationService builds the user-facing notifications requested by the
// access core. Delivery is owned by whatever drains the notifications table.
type NotificationService struct {
	clock clock.Clock
}

// NewNotificationService creates a new notification service
func NewNotificationService(clk clock.Clock) *NotificationService {
	return &NotificationService{clock: clk}
}

// AccessDenied builds the notification for a denied access attempt
func (s *NotificationService) AccessDenied(userID uint, reason string) *domain.Notification {
	return s.build(userID, domain.NotifyAccessDenied,
		"Access denied",
		fmt.Sprintf("Your access attempt was denied: %s.", reason),
	)
}

// StatusChanged builds the notification for a status transition. Moving into
// DEBT gets its own kind.
func (s *NotificationService) StatusChanged(userID uint, from, to domain.Status) *domain.Notification {
	if to == domain.StatusDebt {
		return s.build(userID, domain.NotifyDebt,
			"Outstanding debt",
			"Your membership has an outstanding debt. Access is blocked until it is settled.",
		)
	}
	return s.build(userID, domain.NotifyStatusChanged,
		"Membership status updated",
		fmt.Sprintf("Your membership status changed from %s to %s.", from, to),
	)
}

// ExpiryWarning builds the reminder sent before a membership expires
func (s *NotificationService) ExpiryWarning(userID uint, daysLeft int, expiry time.Time) *domain.Notification {
	when := "in " + pluralDays(daysLeft)
	if daysLeft == 0 {
		when = "today"
	}
	return s.build(userID, domain.NotifyExpiryWarning,
		"Membership expiring soon",
		fmt.Sprintf("Your membership expires %s (%s). Renew it to keep your access.", when, expiry.Format("2006-01-02")),
	)
}

func (s *NotificationService) build(userID uint, kind domain.NotificationKind, title, msg string) *domain.Notification {
	return &domain.Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   msg,
		CreatedAt: s.clock.Now(),
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
