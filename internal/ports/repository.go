package ports

import (
	"context"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

// JournalRepository defines the interface for persisting closed trades.
// Entries are immutable once written except for their notes field.
type JournalRepository interface {
	// Create saves a new journal entry and returns its assigned ID.
	Create(ctx context.Context, entry *domain.JournalEntry) (int64, error)
	// FindRecent retrieves the most recent entries for a symbol, up to a limit.
	FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.JournalEntry, error)
	// CountToday counts entries closed today (local time) for a symbol.
	CountToday(ctx context.Context, symbol string) (int, error)
	// UpdateNotes replaces the notes of an existing entry.
	UpdateNotes(ctx context.Context, id int64, notes string) error
	// TotalPnLPoints sums realized points across all entries.
	TotalPnLPoints(ctx context.Context) (float64, error)
}
