package services

import (
	"saeta-access/internal/config"
	"saeta-access/internal/pkg/clock"

	"go.uber.org/zap"
)

// Container wires every access-control service over one store
type Container struct {
	Notifier *NotificationService
	Tokens   *TokenService
	Status   *StatusService
	Access   *AccessService
	Cards    *CardService
	Scanners *ScannerService
	Sweeps   *SweepService
}

// NewContainer builds the services from the loaded configuration
func NewContainer(store Store, cfg config.AccessConfig, clk clock.Clock, log *zap.Logger) *Container {
	notifier := NewNotificationService(clk)
	tokens := NewTokenService(store, cfg, clk, log)
	status := NewStatusService(store, notifier, clk, log)

	return &Container{
		Notifier: notifier,
		Tokens:   tokens,
		Status:   status,
		Access:   NewAccessService(store, tokens, status, notifier, clk, log),
		Cards:    NewCardService(store, tokens, clk, log),
		Scanners: NewScannerService(store, clk, log),
		Sweeps:   NewSweepService(store, status, notifier, clk, cfg.ExpiryWarningHorizon, log),
	}
}
