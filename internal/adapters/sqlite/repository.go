package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.JournalRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the journal database and verifies the
// schema. The connection pool is pinned to a single connection; SQLite
// serializes writers anyway and the Go driver behaves better this way.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trade_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		contracts INTEGER NOT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP NOT NULL,
		notes TEXT DEFAULT '',
		pnl_points REAL NOT NULL,
		result TEXT NOT NULL,
		close_reason TEXT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_symbol_closed_at ON journal (symbol, closed_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Create saves a new journal entry and returns its assigned ID.
func (r *Repository) Create(ctx context.Context, entry *domain.JournalEntry) (int64, error) {
	const query = `
	INSERT INTO journal (trade_id, symbol, direction, entry_price, exit_price, contracts,
	                     opened_at, closed_at, notes, pnl_points, result, close_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		entry.TradeID, entry.Symbol, entry.Direction, entry.EntryPrice, entry.ExitPrice,
		entry.Contracts, entry.OpenedAt, entry.ClosedAt, entry.Notes, entry.PnLPoints,
		entry.Result, entry.CloseReason)
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal entry for symbol %s: %w", entry.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for journal entry %s: %w", entry.Symbol, err)
	}
	entry.ID = id
	r.logger.Debug(ctx, "Journal entry created", map[string]interface{}{
		"journalID": id, "symbol": entry.Symbol, "pnlPoints": entry.PnLPoints, "result": entry.Result,
	})
	return id, nil
}

// FindRecent retrieves the most recent entries for a symbol, up to a limit.
func (r *Repository) FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.JournalEntry, error) {
	const query = `
	SELECT id, trade_id, symbol, direction, entry_price, exit_price, contracts,
	       opened_at, closed_at, notes, pnl_points, result, close_reason
	FROM journal
	WHERE symbol = ? ORDER BY closed_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	entries := make([]*domain.JournalEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry during FindRecent: %w", err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}
	return entries, nil
}

// CountToday counts entries closed today (local time) for a symbol.
func (r *Repository) CountToday(ctx context.Context, symbol string) (int, error) {
	const query = `SELECT COUNT(*) FROM journal WHERE symbol = ? AND date(closed_at) = date('now', 'localtime')`
	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count journal entries today for symbol %s: %w", symbol, err)
	}
	return count, nil
}

// UpdateNotes replaces the notes of an existing entry.
func (r *Repository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	const query = `UPDATE journal SET notes = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, notes, id)
	if err != nil {
		return fmt.Errorf("failed to update notes for journal entry %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for journal entry %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("journal entry %d not found: %w", id, ports.ErrNotFound)
	}
	return nil
}

// TotalPnLPoints sums realized points across all entries.
func (r *Repository) TotalPnLPoints(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl_points), 0) FROM journal`
	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum journal pnl points: %w", err)
	}
	return total, nil
}

// scanner is compatible with both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*domain.JournalEntry, error) {
	e := &domain.JournalEntry{}
	var direction, result string
	var closeReason sql.NullString
	err := s.Scan(
		&e.ID, &e.TradeID, &e.Symbol, &direction, &e.EntryPrice, &e.ExitPrice, &e.Contracts,
		&e.OpenedAt, &e.ClosedAt, &e.Notes, &e.PnLPoints, &result, &closeReason)
	if err != nil {
		return nil, err
	}
	e.Direction = domain.Direction(direction)
	e.Result = domain.TradeResult(result)
	if closeReason.Valid {
		e.CloseReason = domain.CloseReason(closeReason.String)
	} else {
		e.CloseReason = domain.CloseReasonUnknown
	}
	return e, nil
}
