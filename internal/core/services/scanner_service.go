package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/pkg/clock"
	"saeta-access/internal/pkg/password"

	"go.uber.org/zap"
)

// ScannerService authenticates and registers checkpoint scanners
type ScannerService struct {
	store Store
	clock clock.Clock
	log   *zap.Logger
	keys  *password.Verifier
}

// NewScannerService creates a new scanner service
func NewScannerService(store Store, clk clock.Clock, log *zap.Logger) *ScannerService {
	return &ScannerService{
		store: store,
		clock: clk,
		log:   log.Named("scanner"),
		keys:  password.NewVerifier(password.VerifiedKeyTTL),
	}
}

// Authenticate checks a scanner's id and key. Unknown, inactive and
// mismatching scanners all yield ErrUnauthorized.
func (s *ScannerService) Authenticate(ctx context.Context, id, key string) (*domain.Scanner, error) {
	if id == "" || key == "" {
		return nil, domain.ErrUnauthorized
	}

	scanner, err := s.store.Scanners().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrScannerNotFound) {
			s.log.Warn("access attempt from unknown scanner", zap.String("scanner_id", id))
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !scanner.IsActive {
		s.log.Warn("access attempt from disabled scanner", zap.String("scanner_id", id))
		return nil, domain.ErrUnauthorized
	}
	// The scanner row is read on every call, so a disabled scanner or a
	// rotated key is never served from the verify cache.
	if !s.keys.Verify(key, scanner.KeyHash) {
		s.log.Warn("scanner key mismatch", zap.String("scanner_id", id))
		return nil, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	if err := s.store.Scanners().Touch(ctx, id, now); err != nil {
		s.log.Warn("failed to record scanner heartbeat", zap.String("scanner_id", id), zap.Error(err))
	}
	scanner.LastSeen = &now
	return scanner, nil
}

// Register stores a new active scanner with a hashed key
func (s *ScannerService) Register(ctx context.Context, id, location, key string) (*domain.Scanner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: scanner id is required", domain.ErrInvalidInput)
	}
	if !password.ValidateKey(key) {
		return nil, fmt.Errorf("%w: scanner key must be at least %d characters", domain.ErrInvalidInput, password.MinKeyLength)
	}

	hash, err := password.Hash(key)
	if err != nil {
		return nil, fmt.Errorf("hash scanner key: %w", err)
	}

	scanner := &domain.Scanner{
		ID:       id,
		Location: location,
		KeyHash:  hash,
		IsActive: true,
	}
	if err := s.store.Scanners().Create(ctx, scanner); err != nil {
		return nil, err
	}
	s.log.Info("scanner registered", zap.String("scanner_id", id), zap.String("location", location))
	return scanner, nil
}
