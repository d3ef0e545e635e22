package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" active ")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s)

	_, err = ParseStatus("GOLD")
	assert.ErrorIs(t, err, ErrStatusNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAutomaticTransitions(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusPending, StatusActive}:  true,
		{StatusExpired, StatusActive}:  true,
		{StatusActive, StatusExpired}:  true,
		{StatusPending, StatusDebt}:    true,
		{StatusActive, StatusDebt}:     true,
		{StatusExpired, StatusDebt}:    true,
		{StatusInactive, StatusDebt}:   true,
		{StatusSuspended, StatusDebt}:  true,
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := legal[[2]Status{from, to}]
			assert.Equal(t, want, from.CanTransitionAutomatically(to), "%s -> %s", from, to)
		}
	}
}

func TestBlocksAccess(t *testing.T) {
	for _, s := range AllStatuses {
		want := s == StatusInactive || s == StatusSuspended
		assert.Equal(t, want, s.BlocksAccess(), s.String())
	}
}
