package repositories_test

import (
	"errors"
	"testing"
	"time"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func statusPtr(s domain.Status) *domain.Status { return &s }

func TestAtomicRollsBackOnError(t *testing.T) {
	store, db := newTestStore(t)
	insertUser(t, db, 1, string(domain.StatusPending), nil)

	boom := errors.New("boom")
	err := store.Atomic(ctx(), func(tx services.Store) error {
		if err := tx.Users().UpdateStatus(ctx(), 1, domain.StatusActive); err != nil {
			return err
		}
		uid := uint(1)
		if err := tx.AccessLogs().Append(ctx(), &domain.AccessDecisionRecord{
			UserID:         &uid,
			Timestamp:      t0,
			Granted:        true,
			AttemptType:    domain.AttemptStatusChange,
			PreviousStatus: statusPtr(domain.StatusPending),
			UpdatedStatus:  statusPtr(domain.StatusActive),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := store.Users().GetByID(ctx(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, u.Status)

	logs, err := store.AccessLogs().ListByUser(ctx(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestAtomicCommits(t *testing.T) {
	store, db := newTestStore(t)
	insertUser(t, db, 1, string(domain.StatusPending), nil)

	err := store.Atomic(ctx(), func(tx services.Store) error {
		return tx.Users().UpdateStatus(ctx(), 1, domain.StatusActive)
	})
	require.NoError(t, err)

	u, err := store.Users().GetByID(ctx(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, u.Status)
}

func TestAccessLogQueries(t *testing.T) {
	store, _ := newTestStore(t)
	uid := uint(7)
	reason := "ZONE_NOT_ALLOWED"

	for i, ts := range []time.Time{t0.Add(-time.Hour), t0, t0.Add(time.Minute), t0.Add(time.Hour)} {
		rec := &domain.AccessDecisionRecord{
			UserID:      &uid,
			Timestamp:   ts,
			Granted:     i%2 == 0,
			AttemptType: domain.AttemptScan,
			ScannerID:   "gate-1",
		}
		if !rec.Granted {
			rec.DenialReason = &reason
		}
		require.NoError(t, store.AccessLogs().Append(ctx(), rec))
		require.NotZero(t, rec.ID)
	}

	latest, err := store.AccessLogs().ListByUser(ctx(), uid, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, t0.Add(time.Hour).Equal(latest[0].Timestamp))
	assert.True(t, t0.Add(time.Minute).Equal(latest[1].Timestamp))
	assert.False(t, latest[0].Granted)
	require.NotNil(t, latest[0].DenialReason)
	assert.Equal(t, reason, *latest[0].DenialReason)
	assert.True(t, latest[1].Granted)
	assert.Nil(t, latest[1].DenialReason)

	between, err := store.AccessLogs().ListBetween(ctx(), t0, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.True(t, t0.Equal(between[0].Timestamp))
}

func TestScannerRepository(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Scanners().GetByID(ctx(), "gate-1")
	assert.ErrorIs(t, err, domain.ErrScannerNotFound)

	sc := &domain.Scanner{ID: "gate-1", Location: "Lobby", KeyHash: "hash", IsActive: true}
	require.NoError(t, store.Scanners().Create(ctx(), sc))
	assert.Error(t, store.Scanners().Create(ctx(), sc))

	require.NoError(t, store.Scanners().Touch(ctx(), "gate-1", t0))
	got, err := store.Scanners().GetByID(ctx(), "gate-1")
	require.NoError(t, err)
	assert.Equal(t, "Lobby", got.Location)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.LastSeen)
	assert.True(t, t0.Equal(*got.LastSeen))
}

func TestZonesProfilesAndNotifications(t *testing.T) {
	store, db := newTestStore(t)

	require.NoError(t, db.Create(&models.AccessZone{ID: 1, Name: "Office"}).Error)
	require.NoError(t, db.Create(&models.AccessZone{ID: 2, Name: "Gym"}).Error)
	require.NoError(t, db.Create(&models.AccessProfile{ID: 10, Name: "Office hours"}).Error)
	require.NoError(t, db.Create(&[]models.ProfileZone{{ProfileID: 10, ZoneID: 2}, {ProfileID: 10, ZoneID: 1}}).Error)
	require.NoError(t, db.Create(&models.ProfileTimeRestriction{ProfileID: 10, DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "17:00"}).Error)

	ok, err := store.Zones().Exists(ctx(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Zones().Exists(ctx(), 3)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := store.Profiles().GetByID(ctx(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Office hours", p.Name)
	assert.Equal(t, []uint{1, 2}, p.AllowedZones)
	assert.Len(t, p.Windows, 1)

	_, err = store.Profiles().GetByID(ctx(), 11)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	n := &domain.Notification{UserID: 1, Kind: domain.NotifyAccessDenied, Title: "Denied", Message: "m", CreatedAt: t0}
	require.NoError(t, store.Notifications().Create(ctx(), n))
	assert.NotZero(t, n.ID)
}

func TestIssueAndValidateOverDatabase(t *testing.T) {
	store, db := newTestStore(t)
	insertUser(t, db, 1, string(domain.StatusActive), nil)

	clk := clock.NewFixed(t0)
	svc := services.NewContainer(store, config.DefaultAccessConfig("test-qr-secret"), clk, zaptest.NewLogger(t))

	card, _, err := svc.Cards.CreateCard(ctx(), 1)
	require.NoError(t, err)
	_, err = svc.Cards.ActivateCard(ctx(), card.ID)
	require.NoError(t, err)

	issued, err := svc.Tokens.IssueToken(ctx(), 1)
	require.NoError(t, err)
	assert.Equal(t, card.ID, issued.CardID)

	clk.Advance(10 * time.Second)
	userID, ok := svc.Tokens.ValidateToken(ctx(), issued.Token)
	assert.True(t, ok)
	assert.Equal(t, uint(1), userID)
}
