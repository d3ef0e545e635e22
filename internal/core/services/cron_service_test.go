package services_test

import (
	"testing"
	"time"

	"saeta-access/internal/config"
	"saeta-access/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCronServiceSchedules(t *testing.T) {
	f := newFixture(t)
	loc := time.FixedZone("CET", 3600)

	cfg := config.SweepConfig{
		Enabled:          true,
		DemotionSchedule: config.DefaultDemotionSchedule,
		WarningSchedule:  config.DefaultWarningSchedule,
	}
	c, err := services.NewCronService(f.sweeps, cfg, loc, zaptest.NewLogger(t))
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 2)

	// Wednesday 2024-03-06 15:00 local time
	from := time.Date(2024, time.March, 6, 15, 0, 0, 0, loc)
	daily := entries[0].Schedule.Next(from)
	weekly := entries[1].Schedule.Next(from)
	assert.True(t, daily.Equal(time.Date(2024, time.March, 7, 0, 0, 0, 0, loc)), daily)
	assert.True(t, weekly.Equal(time.Date(2024, time.March, 11, 0, 5, 0, 0, loc)), weekly)

	c.Start()
	c.Stop()
}

func TestCronServiceRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := services.NewCronService(f.sweeps, config.SweepConfig{
		DemotionSchedule: "every day",
		WarningSchedule:  config.DefaultWarningSchedule,
	}, time.UTC, zaptest.NewLogger(t))
	assert.Error(t, err)
}
