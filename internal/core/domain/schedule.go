package domain

import (
	"fmt"
	"strings"
	"time"
)

// ParseWeekday accepts full English day names in any case ("MONDAY", "monday")
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == n {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day of week %q", ErrInvalidInput, name)
}

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: bad time %q", ErrInvalidInput, s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: time out of range %q", ErrInvalidInput, s)
	}
	return h*60 + m, nil
}

// NewTimeWindow builds a window from textual parts, e.g. ("MONDAY", "09:00", "17:00")
func NewTimeWindow(day, start, end string) (TimeWindow, error) {
	wd, err := ParseWeekday(day)
	if err != nil {
		return TimeWindow{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}
	if e <= s {
		return TimeWindow{}, fmt.Errorf("%w: window end %s is not after start %s", ErrInvalidInput, end, start)
	}
	return TimeWindow{Weekday: wd, StartMinute: s, EndMinute: e}, nil
}
