package services

import (
	"context"
	"fmt"
	"time"

	"saeta-access/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService triggers the expiry sweeps on their configured schedules,
// off the request path
type CronService struct {
	cron   *cron.Cron
	sweeps *SweepService
	log    *zap.Logger
}

// NewCronService registers the sweep jobs. Schedules are standard 5-field
// cron expressions evaluated in loc.
func NewCronService(sweeps *SweepService, cfg config.SweepConfig, loc *time.Location, log *zap.Logger) (*CronService, error) {
	if loc == nil {
		loc = time.Local
	}
	log = log.Named("cron")
	cl := cronLogger{log.Sugar()}

	s := &CronService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeps: sweeps,
		log:    log,
	}

	if _, err := s.cron.AddFunc(cfg.DemotionSchedule, s.runDemotion); err != nil {
		return nil, fmt.Errorf("invalid demotion schedule %q: %w", cfg.DemotionSchedule, err)
	}
	if _, err := s.cron.AddFunc(cfg.WarningSchedule, s.runWarnings); err != nil {
		return nil, fmt.Errorf("invalid warning schedule %q: %w", cfg.WarningSchedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("sweep scheduled", zap.Int("entry", int(e.ID)), zap.Time("next", e.Next))
	}
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("sweep scheduler stopped")
}

// Entries lists the registered jobs
func (s *CronService) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *CronService) runDemotion() {
	s.sweeps.RunDemotionSweep(context.Background())
}

func (s *CronService) runWarnings() {
	s.sweeps.RunExpiryWarningSweep(context.Background())
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
