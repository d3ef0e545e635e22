package services_test

import (
	"testing"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionAutomatic(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusActive)

	res, err := f.status.Transition(f.ctx, 1, domain.StatusExpired, services.TransitionOptions{ScannerID: "job"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, domain.StatusActive, res.Previous)
	assert.Equal(t, domain.StatusExpired, res.Current)
	require.NotNil(t, res.Record)
	assert.Equal(t, domain.AttemptStatusChange, res.Record.AttemptType)

	notes := f.notificationsOf(1)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifyStatusChanged, notes[0].Kind)
}

func TestTransitionRejectsIllegalAutomatic(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusDebt)
	f.user(2, domain.StatusSuspended)

	_, err := f.status.Transition(f.ctx, 1, domain.StatusActive, services.TransitionOptions{})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, domain.StatusDebt, f.store.User(1).Status)

	_, err = f.status.Transition(f.ctx, 2, domain.StatusActive, services.TransitionOptions{})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Empty(t, f.store.Logs())
	assert.Empty(t, f.store.SentNotifications())
}

func TestTransitionToDebtUsesDebtNotification(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusInactive)

	_, err := f.status.Transition(f.ctx, 1, domain.StatusDebt, services.TransitionOptions{})
	require.NoError(t, err)

	notes := f.notificationsOf(1)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifyDebt, notes[0].Kind)
}

func TestTransitionCompareAndSet(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusPending)

	_, err := f.status.Transition(f.ctx, 1, domain.StatusExpired, services.TransitionOptions{
		Manual:     true,
		ExpectFrom: domain.StatusActive.Ptr(),
	})
	assert.ErrorIs(t, err, domain.ErrStatusChanged)
	assert.Equal(t, domain.StatusPending, f.store.User(1).Status)

	_, err = f.status.Transition(f.ctx, 1, domain.StatusActive, services.TransitionOptions{
		Guard: func(u *domain.User) bool { return u.HasDebt },
	})
	assert.ErrorIs(t, err, domain.ErrStatusChanged)
}

func TestTransitionNoop(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusActive)

	res, err := f.status.Transition(f.ctx, 1, domain.StatusActive, services.TransitionOptions{})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Record)
	assert.Empty(t, f.store.Logs())
}

func TestTransitionValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.status.Transition(f.ctx, 1, domain.Status("GOLD"), services.TransitionOptions{})
	assert.ErrorIs(t, err, domain.ErrStatusNotFound)

	_, err = f.status.Transition(f.ctx, 1, domain.StatusActive, services.TransitionOptions{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
