package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:30": 570,
		"17:00": 1020,
		"24:00": 1440,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "9", "25:00", "24:01", "12:60", "-1:00", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestNewTimeWindow(t *testing.T) {
	w, err := NewTimeWindow("monday", "09:00", "17:00")
	require.NoError(t, err)
	assert.Equal(t, TimeWindow{Weekday: time.Monday, StartMinute: 540, EndMinute: 1020}, w)

	_, err = NewTimeWindow("FUNDAY", "09:00", "17:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewTimeWindow("MONDAY", "17:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTimeWindowContains(t *testing.T) {
	w := TimeWindow{Weekday: time.Monday, StartMinute: 540, EndMinute: 1020}
	mon := func(h, m int) time.Time { return time.Date(2024, time.March, 4, h, m, 0, 0, time.UTC) }

	assert.False(t, w.Contains(mon(8, 59)))
	assert.True(t, w.Contains(mon(9, 0)))
	assert.True(t, w.Contains(mon(16, 59)))
	assert.False(t, w.Contains(mon(17, 0)))
	assert.False(t, w.Contains(mon(10, 0).AddDate(0, 0, 1)))

	allDay := TimeWindow{Weekday: time.Monday, StartMinute: 0, EndMinute: 1440}
	assert.True(t, allDay.Contains(mon(23, 59)))
}

func TestProfileAllows(t *testing.T) {
	p := &AccessProfile{
		AllowedZones: []uint{1, 3},
		Windows: []TimeWindow{
			{Weekday: time.Monday, StartMinute: 540, EndMinute: 720},
			{Weekday: time.Monday, StartMinute: 780, EndMinute: 1020},
		},
	}
	assert.True(t, p.AllowsZone(3))
	assert.False(t, p.AllowsZone(2))

	at := func(h int) time.Time { return time.Date(2024, time.March, 4, h, 30, 0, 0, time.UTC) }
	assert.True(t, p.AllowsTime(at(10)))
	assert.False(t, p.AllowsTime(at(12)))
	assert.True(t, p.AllowsTime(at(14)))
}
