package sessions

import (
	"fmt"
	"time"
)

// Clock converts instants into the fixed reference timezone used for all
// session bucketing (exchange-local, America/New_York by default). True IANA
// conversion via time.Location, so DST transitions are handled correctly.
type Clock struct {
	loc *time.Location
}

// NewClock loads the reference timezone.
func NewClock(tzName string) (*Clock, error) {
	if tzName == "" {
		tzName = "America/New_York"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference timezone %q: %w", tzName, err)
	}
	return &Clock{loc: loc}, nil
}

// Location returns the reference timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Minutes returns minutes since midnight of t in the reference timezone.
func (c *Clock) Minutes(t time.Time) int {
	local := t.In(c.loc)
	return local.Hour()*60 + local.Minute()
}

// DayKey returns t's calendar day in the reference timezone as 2006-01-02.
func (c *Clock) DayKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// PrevDayKey returns the calendar day before the given day key. Anchoring at
// noon sidesteps DST-transition edge cases.
func (c *Clock) PrevDayKey(dayKey string) string {
	t, err := time.ParseInLocation("2006-01-02", dayKey, c.loc)
	if err != nil {
		return ""
	}
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, c.loc)
	return noon.AddDate(0, 0, -1).In(c.loc).Format("2006-01-02")
}

// Window is a time-of-day range in the reference timezone, expressed as
// minutes since midnight. End < Start marks a window crossing midnight.
type Window struct {
	StartMin int
	EndMin   int
}

// Crossing reports whether the window spans midnight.
func (w Window) Crossing() bool {
	return w.EndMin < w.StartMin
}

// Contains reports whether minutes-since-midnight m falls inside the window.
// Membership is start-inclusive, end-exclusive.
func (w Window) Contains(m int) bool {
	if w.Crossing() {
		return m >= w.StartMin || m < w.EndMin
	}
	return m >= w.StartMin && m < w.EndMin
}

// InWindow reports whether t falls inside the window in the reference zone.
func (c *Clock) InWindow(t time.Time, w Window) bool {
	return w.Contains(c.Minutes(t))
}

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid HH:MM value %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("HH:MM value %q out of range", hhmm)
	}
	return h*60 + m, nil
}
