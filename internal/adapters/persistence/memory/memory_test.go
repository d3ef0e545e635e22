package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutUser(&domain.User{ID: 1, Status: domain.StatusActive})

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx services.Store) error {
		require.NoError(t, tx.Users().UpdateStatus(ctx, 1, domain.StatusDebt))
		require.NoError(t, tx.Notifications().Create(ctx, &domain.Notification{UserID: 1}))
		require.NoError(t, tx.AccessLogs().Append(ctx, &domain.AccessDecisionRecord{Timestamp: time.Now()}))

		// The unit sees its own writes
		u, err := tx.Users().GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDebt, u.Status)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, domain.StatusActive, s.User(1).Status)
	assert.Empty(t, s.SentNotifications())
	assert.Empty(t, s.Logs())
}

func TestAtomicCommit(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutUser(&domain.User{ID: 1, Status: domain.StatusPending})

	err := s.Atomic(ctx, func(tx services.Store) error {
		return tx.Users().UpdateStatus(ctx, 1, domain.StatusActive)
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, s.User(1).Status)
}

func TestNestedAtomic(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutUser(&domain.User{ID: 1, Status: domain.StatusPending})

	err := s.Atomic(ctx, func(tx services.Store) error {
		require.NoError(t, tx.Users().UpdateStatus(ctx, 1, domain.StatusActive))
		inner := tx.Atomic(ctx, func(tx2 services.Store) error {
			require.NoError(t, tx2.Users().UpdateStatus(ctx, 1, domain.StatusDebt))
			return errors.New("inner")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, s.User(1).Status)
}

func TestAtomicSerialisesUnits(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutUser(&domain.User{ID: 1})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Atomic(ctx, func(tx services.Store) error {
				return tx.AccessLogs().Append(ctx, &domain.AccessDecisionRecord{UserID: uintPtr(1)})
			})
		}()
	}
	wg.Wait()

	logs := s.Logs()
	require.Len(t, logs, 20)
	seen := map[uint]bool{}
	for _, l := range logs {
		seen[l.ID] = true
	}
	assert.Len(t, seen, 20)
}

func TestCardConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()

	card := &domain.Card{UserID: 1, CardNumber: "CARD-1"}
	require.NoError(t, s.Cards().Create(ctx, card))
	assert.NotZero(t, card.ID)

	assert.Error(t, s.Cards().Create(ctx, &domain.Card{UserID: 1, CardNumber: "CARD-2"}))
	assert.Error(t, s.Cards().Create(ctx, &domain.Card{UserID: 2, CardNumber: "CARD-1"}))

	exists, err := s.Cards().ExistsByCardNumber(ctx, "CARD-1")
	require.NoError(t, err)
	assert.True(t, exists)

	err = s.Cards().Save(ctx, &domain.Card{ID: 99})
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestUserQueries(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	exp := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	s.PutUser(&domain.User{ID: 3, Status: domain.StatusActive, MembershipExpiry: exp(-time.Hour)})
	s.PutUser(&domain.User{ID: 1, Status: domain.StatusActive, MembershipExpiry: exp(-48 * time.Hour)})
	s.PutUser(&domain.User{ID: 2, Status: domain.StatusActive, MembershipExpiry: exp(time.Hour)})
	s.PutUser(&domain.User{ID: 4, Status: domain.StatusActive})

	expired, err := s.Users().FindByStatusExpiredBefore(ctx, domain.StatusActive, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, uint(1), expired[0].ID)
	assert.Equal(t, uint(3), expired[1].ID)

	soon, err := s.Users().FindExpiringBetween(ctx, now, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, uint(2), soon[0].ID)
}

func TestProfileIsCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutProfile(&domain.AccessProfile{ID: 1, AllowedZones: []uint{1}})

	p, err := s.Profiles().GetByID(ctx, 1)
	require.NoError(t, err)
	p.AllowedZones[0] = 9

	again, err := s.Profiles().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, again.AllowedZones)

	_, err = s.Profiles().GetByID(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func uintPtr(v uint) *uint { return &v }
