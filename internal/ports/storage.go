package ports

import (
	"context"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// SnapshotStore persiste el estado del ledger en un snapshot durable.
type SnapshotStore interface {
	// Save writes the snapshot. A write failure must never corrupt the
	// in-memory ledger — the ledger is the source of truth.
	Save(snap domain.Snapshot) error

	// Load restores the last snapshot. ok is false when no prior state
	// exists (not an error). A malformed file returns an error; callers
	// report it and continue with defaults.
	Load() (snap domain.Snapshot, ok bool, err error)
}

// Journal es el registro append-only de fills y skips para auditoría.
// Los fallos de escritura se reportan pero nunca detienen el copier.
type Journal interface {
	RecordFill(ctx context.Context, wallet string, fill domain.Fill) error
	RecordSkip(ctx context.Context, trade domain.Trade, reason domain.SkipReason) error
	CloseRun(ctx context.Context, stats domain.Stats) error
	Close() error
}
