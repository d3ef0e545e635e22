package services_test

import (
	"testing"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCardIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusActive)

	card, created, err := f.cards.CreateCard(f.ctx, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, card.IsActive)

	again, created, err := f.cards.CreateCard(f.ctx, 1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, card.ID, again.ID)
	assert.Equal(t, card.CardNumber, again.CardNumber)

	_, _, err = f.cards.CreateCard(f.ctx, 2)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestActivateDeactivateCard(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusActive)
	card, _, err := f.cards.CreateCard(f.ctx, 1)
	require.NoError(t, err)

	f.clock.Advance(3 * time.Hour)
	card, err = f.cards.ActivateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, card.IsActive)
	assert.Equal(t, monday10.Add(11*time.Hour), card.ExpiresAt)

	card, err = f.cards.DeactivateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.False(t, card.IsActive)
	assert.False(t, f.store.CardOf(1).IsActive)

	_, err = f.cards.ActivateCard(f.ctx, 99)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestGetCard(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusActive)
	card, _, err := f.cards.CreateCard(f.ctx, 1)
	require.NoError(t, err)

	got, err := f.cards.GetCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UserID)

	got, err = f.cards.GetCardForUser(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)

	_, err = f.cards.GetCardForUser(f.ctx, 2)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestValidateCard(t *testing.T) {
	f := newFixture(t)
	f.user(1, domain.StatusActive)
	card, _, err := f.cards.CreateCard(f.ctx, 1)
	require.NoError(t, err)

	res, err := f.cards.ValidateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, services.CardNotActive, res.Reason)

	_, err = f.cards.ActivateCard(f.ctx, card.ID)
	require.NoError(t, err)
	res, err = f.cards.ValidateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	u := f.store.User(1)
	u.HasDebt, u.MembershipType = true, "club"
	f.store.PutUser(u)
	res, err = f.cards.ValidateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, services.CardOutstandingDue, res.Reason)

	u.Status = domain.StatusSuspended
	f.store.PutUser(u)
	res, err = f.cards.ValidateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, services.CardUserBlocked, res.Reason)

	f.clock.Advance(9 * time.Hour)
	res, err = f.cards.ValidateCard(f.ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, services.CardExpired, res.Reason)
}
