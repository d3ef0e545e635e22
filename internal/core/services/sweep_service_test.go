package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) member(id uint, status domain.Status, expiry time.Time) {
	f.store.PutUser(&domain.User{
		ID:               id,
		FullName:         "Member",
		MembershipType:   "student",
		Status:           status,
		MembershipExpiry: &expiry,
	})
}

func TestDemotionSweep(t *testing.T) {
	f := newFixture(t)
	f.member(1, domain.StatusActive, monday10.AddDate(0, 0, -1)) // A
	f.member(2, domain.StatusActive, monday10.AddDate(0, 0, 1))  // B
	f.member(3, domain.StatusPending, monday10.AddDate(0, 0, -1))

	report := f.sweeps.RunDemotionSweep(f.ctx)

	assert.Equal(t, services.JobDemotion, report.Job)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Processed)
	assert.Zero(t, report.Failed)
	assert.Equal(t, domain.StatusExpired, f.store.User(1).Status)
	assert.Equal(t, domain.StatusActive, f.store.User(2).Status)
	assert.Equal(t, domain.StatusPending, f.store.User(3).Status)

	logs := f.store.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, services.SweepScannerID, logs[0].ScannerID)
	assert.Equal(t, domain.AttemptStatusChange, logs[0].AttemptType)
	assert.Equal(t, domain.StatusExpired, *logs[0].UpdatedStatus)

	notes := f.notificationsOf(1)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifyStatusChanged, notes[0].Kind)
}

func TestDemotionSweepIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	yesterday := monday10.AddDate(0, 0, -1)
	f.member(1, domain.StatusActive, yesterday)
	f.member(2, domain.StatusActive, yesterday)
	f.member(3, domain.StatusActive, yesterday)

	f.store.FailOn("users.update_status", 2, errors.New("deadlock"))

	report := f.sweeps.RunDemotionSweep(f.ctx)
	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)

	assert.Equal(t, domain.StatusExpired, f.store.User(1).Status)
	assert.Equal(t, domain.StatusActive, f.store.User(2).Status)
	assert.Equal(t, domain.StatusExpired, f.store.User(3).Status)
	assert.Empty(t, f.notificationsOf(2))
}

func TestExpiryWarningSweep(t *testing.T) {
	f := newFixture(t)
	f.member(1, domain.StatusActive, monday10)                           // today, 0 days
	f.member(2, domain.StatusActive, monday10.Add(47*time.Hour))          // 1 day
	f.member(3, domain.StatusActive, monday10.Add(30*24*time.Hour))       // outside horizon
	f.member(4, domain.StatusActive, monday10.Add(30*24*time.Hour-time.Second)) // 29 days
	f.member(5, domain.StatusExpired, monday10.Add(-time.Second))         // already expired

	report := f.sweeps.RunExpiryWarningSweep(f.ctx)
	assert.Equal(t, services.JobExpiryWarning, report.Job)
	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, 3, report.Processed)

	expect := map[uint]string{1: "today", 2: "in 1 day", 4: "in 29 days"}
	for id, phrase := range expect {
		notes := f.notificationsOf(id)
		require.Len(t, notes, 1, "user %d", id)
		assert.Equal(t, domain.NotifyExpiryWarning, notes[0].Kind)
		assert.True(t, strings.Contains(notes[0].Message, phrase), notes[0].Message)
	}
	assert.Empty(t, f.notificationsOf(3))
	assert.Empty(t, f.notificationsOf(5))
}

func TestRunExpirySweeps(t *testing.T) {
	f := newFixture(t)
	f.member(1, domain.StatusActive, monday10.AddDate(0, 0, -1))
	f.member(2, domain.StatusActive, monday10.AddDate(0, 0, 3))

	reports := f.sweeps.RunExpirySweeps(f.ctx)
	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[0].Processed)
	assert.Equal(t, 1, reports[1].Processed)
	assert.Equal(t, domain.StatusExpired, f.store.User(1).Status)
}
