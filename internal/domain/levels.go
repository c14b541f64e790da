package domain

import "time"

// SessionRange holds the high/low extremes observed inside one session
// window. Both pointers are nil until at least one candle has been seen in
// the window; downstream logic must treat nil as "unknown", never as zero.
type SessionRange struct {
	High *float64
	Low  *float64
}

// Complete reports whether the session has observed any candles yet.
func (r SessionRange) Complete() bool {
	return r.High != nil && r.Low != nil
}

// SessionLevels holds the liquidity levels for the current trading day.
// Recomputed from scratch each evaluation cycle; superseded when the anchor
// day rolls over.
type SessionLevels struct {
	Asia   SessionRange
	London SessionRange
	NY     SessionRange

	// DayKey is the reference-timezone calendar day the levels are anchored
	// to, formatted as 2006-01-02. Empty when no candles were available.
	DayKey    string
	UpdatedAt time.Time
}

// SweepFlags records which session levels have been swept (price traded
// through the level and closed back on the other side) in the recent candle
// window. Derived state: rebuilt whenever SessionLevels are rebuilt.
type SweepFlags struct {
	AsiaHigh   bool
	AsiaLow    bool
	LondonHigh bool
	LondonLow  bool
	NYHigh     bool
	NYLow      bool
}

// AnyHigh reports whether any Asia or London high was swept.
func (f SweepFlags) AnyHigh() bool {
	return f.AsiaHigh || f.LondonHigh
}

// AnyLow reports whether any Asia or London low was swept.
func (f SweepFlags) AnyLow() bool {
	return f.AsiaLow || f.LondonLow
}
