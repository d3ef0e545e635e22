package services

import (
	"context"
	"errors"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/metrics"
	"saeta-access/internal/pkg/clock"

	"go.uber.org/zap"
)

// SweepScannerID marks audit records written by the expiry sweep
const SweepScannerID = "expiry-sweep"

// Sweep job names
const (
	JobDemotion      = "demotion"
	JobExpiryWarning = "expiry_warning"
)

// SweepReport summarises one sweep run
type SweepReport struct {
	Job        string    `json:"job"`
	Matched    int       `json:"matched"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// SweepService runs the periodic membership expiry jobs
type SweepService struct {
	store    Store
	status   *StatusService
	notifier *NotificationService
	clock    clock.Clock
	horizon  time.Duration
	log      *zap.Logger
}

// NewSweepService creates a new sweep service. horizon is how far ahead
// expiry warnings look.
func NewSweepService(store Store, status *StatusService, notifier *NotificationService, clk clock.Clock, horizon time.Duration, log *zap.Logger) *SweepService {
	return &SweepService{
		store:    store,
		status:   status,
		notifier: notifier,
		clock:    clk,
		horizon:  horizon,
		log:      log.Named("sweep"),
	}
}

// RunDemotionSweep moves every ACTIVE user whose membership expired to
// EXPIRED. Each user is its own atomic unit; failures are counted, not fatal.
func (s *SweepService) RunDemotionSweep(ctx context.Context) SweepReport {
	now := s.clock.Now()
	report := SweepReport{Job: JobDemotion, StartedAt: now}

	users, err := s.store.Users().FindByStatusExpiredBefore(ctx, domain.StatusActive, now)
	if err != nil {
		return s.abort(report, err)
	}
	report.Matched = len(users)

	stillExpired := func(u *domain.User) bool {
		return u.MembershipExpiry != nil && u.MembershipExpiry.Before(now)
	}

	for _, u := range users {
		_, err := s.status.Transition(ctx, u.ID, domain.StatusExpired, TransitionOptions{
			ExpectFrom: domain.StatusActive.Ptr(),
			Guard:      stillExpired,
			ScannerID:  SweepScannerID,
		})
		switch {
		case err == nil:
			report.Processed++
		case errors.Is(err, domain.ErrStatusChanged):
			report.Skipped++
			s.log.Info("user changed since sweep started, skipped", zap.Uint("user_id", u.ID), zap.Error(err))
		default:
			report.Failed++
			s.log.Error("failed to demote user", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}

	return s.finish(report)
}

// RunExpiryWarningSweep notifies every user whose membership expires in
// [now, now+horizon) with the whole number of days left
func (s *SweepService) RunExpiryWarningSweep(ctx context.Context) SweepReport {
	now := s.clock.Now()
	report := SweepReport{Job: JobExpiryWarning, StartedAt: now}

	users, err := s.store.Users().FindExpiringBetween(ctx, now, now.Add(s.horizon))
	if err != nil {
		return s.abort(report, err)
	}
	report.Matched = len(users)

	for _, u := range users {
		days := int(u.MembershipExpiry.Sub(now) / (24 * time.Hour))
		n := s.notifier.ExpiryWarning(u.ID, days, *u.MembershipExpiry)
		if err := s.store.Notifications().Create(ctx, n); err != nil {
			report.Failed++
			s.log.Error("failed to send expiry warning", zap.Uint("user_id", u.ID), zap.Error(err))
			continue
		}
		report.Processed++
	}

	return s.finish(report)
}

// RunExpirySweeps runs the demotion sweep and then the warning sweep
func (s *SweepService) RunExpirySweeps(ctx context.Context) []SweepReport {
	return []SweepReport{
		s.RunDemotionSweep(ctx),
		s.RunExpiryWarningSweep(ctx),
	}
}

func (s *SweepService) abort(report SweepReport, err error) SweepReport {
	report.Error = err.Error()
	report.FinishedAt = s.clock.Now()
	metrics.SweepUsers.WithLabelValues(report.Job, "aborted").Inc()
	s.log.Error("sweep aborted", zap.String("job", report.Job), zap.Error(err))
	return report
}

func (s *SweepService) finish(report SweepReport) SweepReport {
	report.FinishedAt = s.clock.Now()
	metrics.SweepUsers.WithLabelValues(report.Job, "processed").Add(float64(report.Processed))
	metrics.SweepUsers.WithLabelValues(report.Job, "skipped").Add(float64(report.Skipped))
	metrics.SweepUsers.WithLabelValues(report.Job, "failed").Add(float64(report.Failed))
	s.log.Info("sweep finished",
		zap.String("job", report.Job),
		zap.Int("matched", report.Matched),
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report
}
