package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/metrics"
	"saeta-access/internal/pkg/clock"

	"go.uber.org/zap"
)

// DefaultHistoryLimit is the number of records History returns when no
// limit is given
const DefaultHistoryLimit = 20

// ScanRequest is one checkpoint scan
type ScanRequest struct {
	Token           string
	ZoneID          *uint
	ScannerID       string
	ScannerLocation string
}

// ActivationRequest describes where an operator activated a card
type ActivationRequest struct {
	ZoneID          *uint
	ScannerID       string
	ScannerLocation string
}

// AccessService decides access attempts and records them
type AccessService struct {
	store    Store
	tokens   *TokenService
	status   *StatusService
	notifier *NotificationService
	clock    clock.Clock
	loc      *time.Location
	window   time.Duration
	log      *zap.Logger
}

// NewAccessService creates a new access service. Time windows and the card
// activation window come from the token service's access config.
func NewAccessService(
	store Store,
	tokens *TokenService,
	status *StatusService,
	notifier *NotificationService,
	clk clock.Clock,
	log *zap.Logger,
) *AccessService {
	loc := tokens.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &AccessService{
		store:    store,
		tokens:   tokens,
		status:   status,
		notifier: notifier,
		clock:    clk,
		loc:      loc,
		window:   tokens.cfg.ActivationWindow,
		log:      log.Named("access"),
	}
}

type statusChange struct {
	userID   uint
	from, to domain.Status
}

// DecideAccess validates the token, evaluates the rules and applies any
// status change, the audit record and the notification as one unit.
func (s *AccessService) DecideAccess(ctx context.Context, req ScanRequest) (*domain.AccessDecisionRecord, error) {
	start := time.Now()
	defer func() {
		metrics.AccessDecisionDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		record *domain.AccessDecisionRecord
		change *statusChange
	)
	err := s.store.Atomic(ctx, func(tx Store) error {
		record, change = nil, nil

		if err := requireZone(ctx, tx, req.ZoneID); err != nil {
			return err
		}
		now := s.clock.Now()

		userID, ok := s.tokens.validate(ctx, tx.Cards(), req.Token)
		if !ok {
			reason := ReasonInvalidToken
			record = &domain.AccessDecisionRecord{
				ZoneID:          req.ZoneID,
				Timestamp:       now,
				AttemptType:     domain.AttemptScan,
				ScannerID:       req.ScannerID,
				ScannerLocation: req.ScannerLocation,
				DenialReason:    &reason,
			}
			return tx.AccessLogs().Append(ctx, record)
		}

		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		var profile *domain.AccessProfile
		if req.ZoneID != nil && user.AccessProfileID != nil {
			if profile, err = tx.Profiles().GetByID(ctx, *user.AccessProfileID); err != nil {
				return err
			}
		}

		ev := EvaluateAccess(user, profile, req.ZoneID, now.In(s.loc))

		from := user.Status
		record = &domain.AccessDecisionRecord{
			UserID:          &user.ID,
			ZoneID:          req.ZoneID,
			Timestamp:       now,
			Granted:         ev.Granted,
			AttemptType:     domain.AttemptScan,
			ScannerID:       req.ScannerID,
			ScannerLocation: req.ScannerLocation,
		}

		if ev.Target != nil {
			changed, err := s.status.apply(ctx, tx, user, *ev.Target, false)
			if err != nil {
				return err
			}
			if changed {
				record.PreviousStatus = from.Ptr()
				record.UpdatedStatus = user.Status.Ptr()
				change = &statusChange{userID: user.ID, from: from, to: user.Status}
			}
		}

		if !ev.Granted {
			reason := ev.Reason
			record.DenialReason = &reason
		}
		if err := tx.AccessLogs().Append(ctx, record); err != nil {
			return err
		}

		if !ev.Granted {
			return tx.Notifications().Create(ctx, s.notifier.AccessDenied(user.ID, ev.Reason))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		s.status.observe(change.userID, change.from, change.to, false)
	}
	s.observeDecision(record)
	return record, nil
}

// ManualTransition applies an operator status change and returns its
// STATUS_CHANGE audit record
func (s *AccessService) ManualTransition(ctx context.Context, userID uint, status, actor string) (*domain.AccessDecisionRecord, error) {
	to, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	res, err := s.status.Transition(ctx, userID, to, TransitionOptions{
		Manual:    true,
		ScannerID: actor,
	})
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// ActivateUserCard activates a user at a checkpoint: the user becomes ACTIVE,
// the card is activated for a fresh window and an ACTIVATION record is written.
// Users without a card are still activated.
func (s *AccessService) ActivateUserCard(ctx context.Context, userID uint, req ActivationRequest) (*domain.AccessDecisionRecord, error) {
	var (
		record *domain.AccessDecisionRecord
		change *statusChange
	)
	err := s.store.Atomic(ctx, func(tx Store) error {
		record, change = nil, nil

		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := requireZone(ctx, tx, req.ZoneID); err != nil {
			return err
		}
		now := s.clock.Now()

		card, err := tx.Cards().GetByUserID(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrCardNotFound):
			s.log.Info("activating user without card", zap.Uint("user_id", userID))
		case err != nil:
			return err
		default:
			card.IsActive = true
			card.ExpiresAt = now.Add(s.window)
			if err := tx.Cards().Save(ctx, card); err != nil {
				return err
			}
		}

		from := user.Status
		changed, err := s.status.apply(ctx, tx, user, domain.StatusActive, true)
		if err != nil {
			return err
		}
		if changed {
			change = &statusChange{userID: userID, from: from, to: user.Status}
		}

		record = &domain.AccessDecisionRecord{
			UserID:          &user.ID,
			ZoneID:          req.ZoneID,
			Timestamp:       now,
			Granted:         true,
			AttemptType:     domain.AttemptActivation,
			ScannerID:       req.ScannerID,
			ScannerLocation: req.ScannerLocation,
			PreviousStatus:  from.Ptr(),
			UpdatedStatus:   user.Status.Ptr(),
		}
		return tx.AccessLogs().Append(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		s.status.observe(change.userID, change.from, change.to, true)
	}
	return record, nil
}

// History returns the newest records of a user, at most limit of them
func (s *AccessService) History(ctx context.Context, userID uint, limit int) ([]*domain.AccessDecisionRecord, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.AccessLogs().ListByUser(ctx, userID, limit)
}

// Latest returns the most recent record of a user
func (s *AccessService) Latest(ctx context.Context, userID uint) (*domain.AccessDecisionRecord, error) {
	records, err := s.History(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return records[0], nil
}

// Between returns every record with from <= timestamp <= to, oldest first
func (s *AccessService) Between(ctx context.Context, from, to time.Time) ([]*domain.AccessDecisionRecord, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	return s.store.AccessLogs().ListBetween(ctx, from, to)
}

func (s *AccessService) observeDecision(record *domain.AccessDecisionRecord) {
	result, reason := "granted", ""
	if !record.Granted {
		result = "denied"
		if record.DenialReason != nil {
			reason = *record.DenialReason
			if strings.HasPrefix(reason, ReasonStatusPrefix) {
				reason = ReasonStatusPrefix + "blocked"
			}
		}
	}
	metrics.AccessDecisions.WithLabelValues(result, reason).Inc()

	fields := []zap.Field{
		zap.Bool("granted", record.Granted),
		zap.String("scanner_id", record.ScannerID),
	}
	if record.UserID != nil {
		fields = append(fields, zap.Uint("user_id", *record.UserID))
	}
	if record.ZoneID != nil {
		fields = append(fields, zap.Uint("zone_id", *record.ZoneID))
	}
	if record.DenialReason != nil {
		fields = append(fields, zap.String("reason", *record.DenialReason))
	}
	s.log.Info("access decided", fields...)
}

func requireZone(ctx context.Context, tx Store, zoneID *uint) error {
	if zoneID == nil {
		return nil
	}
	ok, err := tx.Zones().Exists(ctx, *zoneID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrZoneNotFound
	}
	return nil
}
