package sessions

import (
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// Windows holds the three liquidity session windows. Asia crosses midnight;
// its anchor day is the day the session starts, so the evening portion and
// the following early-morning portion belong to the same session instance.
type Windows struct {
	Asia   Window
	London Window
	NY     Window
}

// DefaultWindows returns the standard windows in reference-timezone minutes:
// Asia 20:00-02:00, London 02:00-05:00, New York 09:30-11:30.
func DefaultWindows() Windows {
	return Windows{
		Asia:   Window{StartMin: 20 * 60, EndMin: 2 * 60},
		London: Window{StartMin: 2 * 60, EndMin: 5 * 60},
		NY:     Window{StartMin: 9*60 + 30, EndMin: 11*60 + 30},
	}
}

// Engine computes session high/low levels from 1-minute candles.
// Levels are rebuilt from scratch every evaluation cycle rather than
// incrementally mutated, so they can never drift.
type Engine struct {
	clock    *Clock
	windows  Windows
	lookback time.Duration
}

// NewEngine creates a session level engine. A lookback of 0 defaults to 36h,
// enough to cover the full prior Asia session.
func NewEngine(clock *Clock, windows Windows, lookback time.Duration) *Engine {
	if lookback <= 0 {
		lookback = 36 * time.Hour
	}
	return &Engine{clock: clock, windows: windows, lookback: lookback}
}

// BuildLevels reduces the 1-minute buffer into per-session high/low ranges
// anchored to the reference day of the most recent candle. Sessions with no
// candles in their window keep nil high/low (unknown, never zero).
func (e *Engine) BuildLevels(oneMin []domain.Candle, now time.Time) domain.SessionLevels {
	levels := domain.SessionLevels{UpdatedAt: now}
	if len(oneMin) == 0 {
		return levels
	}

	// Anchor "today" to the most recent candle, not the wall clock, so
	// replayed or stale data stays internally consistent.
	todayKey := e.clock.DayKey(oneMin[len(oneMin)-1].BucketStart)
	prevKey := e.clock.PrevDayKey(todayKey)
	levels.DayKey = todayKey

	cutoff := now.Add(-e.lookback)
	for _, c := range oneMin {
		if c.BucketStart.Before(cutoff) {
			continue
		}
		key := e.clock.DayKey(c.BucketStart)
		min := e.clock.Minutes(c.BucketStart)

		// London and NY anchor to the current reference day.
		if key == todayKey && e.windows.London.Contains(min) {
			extend(&levels.London, c)
		}
		if key == todayKey && e.windows.NY.Contains(min) {
			extend(&levels.NY, c)
		}

		// Asia spans midnight: the evening portion belongs to the previous
		// reference day, the early-morning portion to today. Both group into
		// the session instance anchored on the start day.
		if key == prevKey && min >= e.windows.Asia.StartMin {
			extend(&levels.Asia, c)
		}
		if key == todayKey && min < e.windows.Asia.EndMin {
			extend(&levels.Asia, c)
		}
	}

	return levels
}

// CurrentSession tags the instant with the session window it falls in.
// NY wins over London over Asia when windows are configured to overlap.
func (e *Engine) CurrentSession(now time.Time) domain.SessionID {
	m := e.clock.Minutes(now)
	switch {
	case e.windows.NY.Contains(m):
		return domain.SessionNY
	case e.windows.London.Contains(m):
		return domain.SessionLondon
	case e.windows.Asia.Contains(m):
		return domain.SessionAsia
	}
	return domain.SessionOff
}

func extend(r *domain.SessionRange, c domain.Candle) {
	if r.High == nil || c.High > *r.High {
		h := c.High
		r.High = &h
	}
	if r.Low == nil || c.Low < *r.Low {
		l := c.Low
		r.Low = &l
	}
}
