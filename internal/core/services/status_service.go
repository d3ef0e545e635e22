package services

import (
	"context"
	"fmt"
	"strconv"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/metrics"
	"saeta-access/internal/pkg/clock"

	"go.uber.org/zap"
)

// TransitionOptions controls a standalone status transition
type TransitionOptions struct {
	// Manual transitions are operator driven and may go between any statuses
	Manual bool
	// ExpectFrom makes the transition a compare-and-set: it fails with
	// ErrStatusChanged when the stored status differs
	ExpectFrom *domain.Status
	// Guard is checked against the locked user; false fails the transition
	// with ErrStatusChanged
	Guard func(*domain.User) bool

	ZoneID          *uint
	ScannerID       string
	ScannerLocation string
}

// TransitionResult describes a committed transition
type TransitionResult struct {
	UserID   uint
	Previous domain.Status
	Current  domain.Status
	Changed  bool
	Record   *domain.AccessDecisionRecord
}

// StatusService is the only writer of user status
type StatusService struct {
	store    Store
	notifier *NotificationService
	clock    clock.Clock
	log      *zap.Logger
}

// NewStatusService creates a new status service
func NewStatusService(store Store, notifier *NotificationService, clk clock.Clock, log *zap.Logger) *StatusService {
	return &StatusService{
		store:    store,
		notifier: notifier,
		clock:    clk,
		log:      log.Named("status"),
	}
}

// Transition moves a user to status `to` in its own atomic unit. The status
// write, the notification and a STATUS_CHANGE audit record commit together.
func (s *StatusService) Transition(ctx context.Context, userID uint, to domain.Status, opts TransitionOptions) (*TransitionResult, error) {
	if !to.IsValid() {
		return nil, domain.ErrStatusNotFound
	}

	var result *TransitionResult
	err := s.store.Atomic(ctx, func(tx Store) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if opts.ExpectFrom != nil && user.Status != *opts.ExpectFrom {
			return fmt.Errorf("%w: user %d is %s, expected %s", domain.ErrStatusChanged, userID, user.Status, *opts.ExpectFrom)
		}
		if opts.Guard != nil && !opts.Guard(user) {
			return fmt.Errorf("%w: user %d no longer qualifies", domain.ErrStatusChanged, userID)
		}

		from := user.Status
		changed, err := s.apply(ctx, tx, user, to, opts.Manual)
		if err != nil {
			return err
		}

		result = &TransitionResult{UserID: userID, Previous: from, Current: user.Status, Changed: changed}

		// Automatic no-ops leave no trace. Operators always get an audit entry.
		if !changed && !opts.Manual {
			return nil
		}

		record := &domain.AccessDecisionRecord{
			UserID:          &user.ID,
			ZoneID:          opts.ZoneID,
			Timestamp:       s.clock.Now(),
			Granted:         true,
			AttemptType:     domain.AttemptStatusChange,
			ScannerID:       opts.ScannerID,
			ScannerLocation: opts.ScannerLocation,
			PreviousStatus:  from.Ptr(),
			UpdatedStatus:   user.Status.Ptr(),
		}
		if err := tx.AccessLogs().Append(ctx, record); err != nil {
			return err
		}
		result.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		s.observe(result.UserID, result.Previous, result.Current, opts.Manual)
	}
	return result, nil
}

// apply changes the user's status inside an open atomic unit and requests the
// matching notification. It reports false when the user already is in `to`.
// Callers must call observe after commit for every change.
func (s *StatusService) apply(ctx context.Context, tx Store, user *domain.User, to domain.Status, manual bool) (bool, error) {
	from := user.Status
	if from == to {
		return false, nil
	}
	if !manual && !from.CanTransitionAutomatically(to) {
		s.log.Warn("rejected illegal automatic transition",
			zap.Uint("user_id", user.ID),
			zap.String("status_from", from.String()),
			zap.String("status_to", to.String()),
		)
		return false, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, from, to)
	}

	if err := tx.Users().UpdateStatus(ctx, user.ID, to); err != nil {
		return false, err
	}
	if err := tx.Notifications().Create(ctx, s.notifier.StatusChanged(user.ID, from, to)); err != nil {
		return false, fmt.Errorf("notify status change of user %d: %w", user.ID, err)
	}

	user.Status = to
	return true, nil
}

func (s *StatusService) observe(userID uint, from, to domain.Status, manual bool) {
	metrics.StatusTransitions.WithLabelValues(from.String(), to.String(), strconv.FormatBool(manual)).Inc()
	s.log.Info("status changed",
		zap.Uint("user_id", userID),
		zap.String("status_from", from.String()),
		zap.String("status_to", to.String()),
		zap.Bool("manual", manual),
	)
}
