package storage

// sqlite.go — journal de auditoría en SQLite (pure Go, sin CGo).
//
// El snapshot JSON es el estado canónico para reanudar; el journal es el
// histórico append-only para análisis posterior:
//   - `runs`: una fila por sesión del monitor, con los contadores finales.
//   - `fills`: una fila por trade copiado.
//   - `skips`: una fila por trade detectado y descartado, con el motivo.
// Prune automático al arrancar: skips > 30d (los fills se conservan).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

const journalSchema = `
-- Una fila por sesión del monitor
CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    mode             TEXT     NOT NULL,
    started_at       DATETIME NOT NULL,
    ended_at         DATETIME,
    detected         INTEGER  NOT NULL DEFAULT 0,
    copied           INTEGER  NOT NULL DEFAULT 0,
    skipped_slippage INTEGER  NOT NULL DEFAULT 0,
    skipped_funds    INTEGER  NOT NULL DEFAULT 0,
    skipped_price    INTEGER  NOT NULL DEFAULT 0,
    skipped_position INTEGER  NOT NULL DEFAULT 0,
    failed_orders    INTEGER  NOT NULL DEFAULT 0,
    total_slippage   REAL     NOT NULL DEFAULT 0
);

-- Una fila por trade copiado
CREATE TABLE IF NOT EXISTS fills (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     TEXT     NOT NULL,
    wallet     TEXT     NOT NULL,
    asset      TEXT     NOT NULL,
    side       TEXT     NOT NULL,
    shares     REAL     NOT NULL,
    exec_price REAL     NOT NULL,
    orig_price REAL     NOT NULL,
    slippage   REAL     NOT NULL,
    usdc       REAL     NOT NULL,
    title      TEXT,
    traded_at  INTEGER  NOT NULL,
    created_at DATETIME NOT NULL
);

-- Una fila por trade detectado y descartado
CREATE TABLE IF NOT EXISTS skips (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     TEXT     NOT NULL,
    wallet     TEXT     NOT NULL,
    asset      TEXT     NOT NULL,
    side       TEXT     NOT NULL,
    reason     TEXT     NOT NULL,
    price      REAL     NOT NULL,
    notional   REAL     NOT NULL,
    traded_at  INTEGER  NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_run    ON fills(run_id);
CREATE INDEX IF NOT EXISTS idx_fills_asset  ON fills(asset);
CREATE INDEX IF NOT EXISTS idx_skips_run    ON skips(run_id);
CREATE INDEX IF NOT EXISTS idx_skips_reason ON skips(reason);
`

const retentionSkips = 30 * 24 * time.Hour

// SQLiteJournal implements ports.Journal.
type SQLiteJournal struct {
	db    *sql.DB
	runID string
}

// NewSQLiteJournal abre (o crea) la base de datos y registra una nueva run.
func NewSQLiteJournal(path, mode string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{
		db:    db,
		runID: uuid.NewString(),
	}
	j.pruneOld(context.Background())

	if _, err := db.Exec(
		`INSERT INTO runs (id, mode, started_at) VALUES (?, ?, ?)`,
		j.runID, mode, time.Now().UTC(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: insert run: %w", err)
	}
	return j, nil
}

// RunID returns the identifier of the current session.
func (j *SQLiteJournal) RunID() string {
	return j.runID
}

// RecordFill appends a copied trade to the journal.
func (j *SQLiteJournal) RecordFill(ctx context.Context, wallet string, fill domain.Fill) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO fills
			(run_id, wallet, asset, side, shares, exec_price, orig_price, slippage, usdc, title, traded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, wallet, fill.Asset, string(fill.Side), fill.Shares,
		fill.ExecPrice, fill.OrigPrice, fill.Slippage, fill.Notional,
		fill.Title, fill.Time, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.RecordFill: %w", err)
	}
	return nil
}

// RecordSkip appends a discarded trade with its reason.
func (j *SQLiteJournal) RecordSkip(ctx context.Context, trade domain.Trade, reason domain.SkipReason) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO skips
			(run_id, wallet, asset, side, reason, price, notional, traded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, trade.Wallet, trade.Asset, string(trade.Side), string(reason),
		trade.Price, trade.Notional, trade.Timestamp, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.RecordSkip: %w", err)
	}
	return nil
}

// CloseRun stamps the session end and final counters.
func (j *SQLiteJournal) CloseRun(ctx context.Context, stats domain.Stats) error {
	if _, err := j.db.ExecContext(ctx, `
		UPDATE runs SET
			ended_at         = ?,
			detected         = ?,
			copied           = ?,
			skipped_slippage = ?,
			skipped_funds    = ?,
			skipped_price    = ?,
			skipped_position = ?,
			failed_orders    = ?,
			total_slippage   = ?
		WHERE id = ?`,
		time.Now().UTC(),
		stats.Detected, stats.Copied,
		stats.SkippedSlippage, stats.SkippedFunds, stats.SkippedPrice,
		stats.SkippedPosition, stats.FailedOrders, stats.TotalSlippage,
		j.runID,
	); err != nil {
		return fmt.Errorf("storage.CloseRun: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld elimina skips antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionSkips)
	j.db.ExecContext(ctx, `DELETE FROM skips WHERE created_at < ?`, cutoff)
}
