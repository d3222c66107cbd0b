package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"rewind/internal/domain"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at       TEXT    NOT NULL,
	strategy         TEXT    NOT NULL,
	symbol           TEXT    NOT NULL,
	initial_capital  REAL    NOT NULL,
	final_value      REAL    NOT NULL,
	total_return_pct REAL    NOT NULL,
	max_drawdown_pct REAL    NOT NULL,
	total_trades     INTEGER NOT NULL,
	winning_trades   INTEGER NOT NULL,
	losing_trades    INTEGER NOT NULL,
	win_rate_pct     REAL    NOT NULL,
	avg_win          REAL    NOT NULL,
	avg_loss         REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS run_trades (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	entry_time    TEXT    NOT NULL,
	exit_time     TEXT    NOT NULL,
	side          TEXT    NOT NULL,
	entry_price   REAL    NOT NULL,
	exit_price    REAL    NOT NULL,
	pnl           REAL    NOT NULL,
	pnl_pct       REAL    NOT NULL,
	capital_after REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_trades_run ON run_trades(run_id);
`

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and its trades in one transaction and sets rec.ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			created_at, strategy, symbol,
			initial_capital, final_value, total_return_pct, max_drawdown_pct,
			total_trades, winning_trades, losing_trades,
			win_rate_pct, avg_win, avg_loss
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Strategy, rec.Symbol,
		rec.InitialCapital, rec.FinalValue, rec.TotalReturnPct, rec.MaxDrawdownPct,
		rec.TotalTrades, rec.WinningTrades, rec.LosingTrades,
		rec.WinRatePct, rec.AvgWin, rec.AvgLoss,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, t := range rec.Trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_trades (
				run_id, entry_time, exit_time, side,
				entry_price, exit_price, pnl, pnl_pct, capital_after
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			t.EntryTime.UTC().Format(time.RFC3339Nano),
			t.ExitTime.UTC().Format(time.RFC3339Nano),
			string(t.Side),
			t.EntryPrice, t.ExitPrice, t.PnL, t.PnLPct, t.CapitalAfter,
		)
		if err != nil {
			return fmt.Errorf("inserting trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// ListRuns returns the most recent runs without trades, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, strategy, symbol,
		       initial_capital, final_value, total_return_pct, max_drawdown_pct,
		       total_trades, winning_trades, losing_trades,
		       win_rate_pct, avg_win, avg_loss
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// GetRun retrieves one run by ID, including its trade log.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, strategy, symbol,
		       initial_capital, final_value, total_return_pct, max_drawdown_pct,
		       total_trades, winning_trades, losing_trades,
		       win_rate_pct, avg_win, avg_loss
		FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("run %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_time, exit_time, side, entry_price, exit_price,
		       pnl, pnl_pct, capital_after
		FROM run_trades WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Trade
		var entry, exit, side string
		err := rows.Scan(&entry, &exit, &side, &t.EntryPrice, &t.ExitPrice,
			&t.PnL, &t.PnLPct, &t.CapitalAfter)
		if err != nil {
			return nil, err
		}
		if t.EntryTime, err = time.Parse(time.RFC3339Nano, entry); err != nil {
			return nil, err
		}
		if t.ExitTime, err = time.Parse(time.RFC3339Nano, exit); err != nil {
			return nil, err
		}
		t.Side = domain.Side(side)
		rec.Trades = append(rec.Trades, t)
	}
	return rec, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var rec RunRecord
	var created string
	err := row.Scan(&rec.ID, &created, &rec.Strategy, &rec.Symbol,
		&rec.InitialCapital, &rec.FinalValue, &rec.TotalReturnPct, &rec.MaxDrawdownPct,
		&rec.TotalTrades, &rec.WinningTrades, &rec.LosingTrades,
		&rec.WinRatePct, &rec.AvgWin, &rec.AvgLoss)
	if err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	return &rec, nil
}
