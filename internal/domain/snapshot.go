package domain

import "time"

// EntryDecision is the entry state machine's output for one cycle.
type EntryDecision struct {
	ShouldEnter bool
	Direction   Direction // Valid only when ShouldEnter is true
	Reason      string    // Human-readable explanation

	// Armed is set while a setup is waiting for its confirmation candle.
	Armed *PendingEntry

	// BlockedBy lists the specific conditions currently preventing an
	// entry (observability only, never driving logic).
	BlockedBy []string
}

// ExitDecision is the exit evaluator's output while a position is open.
type ExitDecision struct {
	ShouldExit bool
	Reason     CloseReason // First matching exit condition of the cycle
	Message    string      // Human-readable explanation
	PnLPoints  float64     // Directional P&L in price points at evaluation time
}

// Snapshot is the immutable state published to consumers after each
// evaluation cycle. Consumers never observe partial updates; a failed tick
// leaves the previous snapshot in place.
type Snapshot struct {
	TakenAt   time.Time
	LastPrice *float64 // nil while no price has been received yet
	Session   SessionID
	Bias      Bias
	EMA20     *float64 // nil while insufficient history
	EMA200    *float64

	AtAllTimeHigh bool
	Levels        SessionLevels
	Sweeps        SweepFlags

	Entry EntryDecision
	Exit  *ExitDecision // nil when no position is open

	OpenTrade *LiveTrade // Copy of the current position, nil when flat

	// Notes is a free-text trace of the cycle for dashboards.
	Notes []string
}
