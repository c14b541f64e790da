package domain

import "time"

// LiveTrade is the single open position the engine is allowed to hold.
// At most one LiveTrade exists system-wide; the app service enforces this.
type LiveTrade struct {
	ID         string    // Unique trade id
	Symbol     string    // Tracked instrument (e.g., "SPX")
	Direction  Direction // CALL or PUT
	EntryPrice float64   // Underlying price at entry
	Size       int       // Number of contracts
	OpenedAt   time.Time // Timestamp when the trade was opened
	Notes      string    // Optional free-text notes
}

// PnLPoints returns the directional profit in underlying price points.
// CALL profits when price rises, PUT when it falls.
func (t *LiveTrade) PnLPoints(currentPrice float64) float64 {
	if t.Direction == Put {
		return t.EntryPrice - currentPrice
	}
	return currentPrice - t.EntryPrice
}

// PendingEntry is a detected setup awaiting its confirmation candle.
// At most one exists at a time; cleared on confirmation or invalidation.
type PendingEntry struct {
	Side    Side      // Armed direction (long or short)
	ArmedAt time.Time // When the setup was detected
}

// JournalEntry is the immutable record of a closed trade.
// Only Notes may change after creation.
type JournalEntry struct {
	ID          int64       // Assigned by the repository
	TradeID     string      // LiveTrade id the entry was created from
	Symbol      string      // Tracked instrument
	Direction   Direction   // CALL or PUT
	EntryPrice  float64     // Underlying price at entry
	ExitPrice   float64     // Underlying price at exit
	Contracts   int         // Position size
	OpenedAt    time.Time   // When the trade was opened
	ClosedAt    time.Time   // When the trade was closed
	Notes       string      // Free-text notes (mutable)
	PnLPoints   float64     // Points per contract, directional
	Result      TradeResult // win, loss or breakeven
	CloseReason CloseReason // Why the trade was closed
}
