package ports

import (
	"context"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// ProfileResolver resuelve identidades de traders a proxy wallets.
type ProfileResolver interface {
	// ResolveUsers maps usernames to wallet -> display name. Users that
	// cannot be resolved are skipped, not an error.
	ResolveUsers(ctx context.Context, usernames []string) (map[string]string, error)

	// ResolveWallets maps wallet addresses to wallet -> display name,
	// falling back to a shortened address when no profile exists.
	ResolveWallets(ctx context.Context, wallets []string) (map[string]string, error)
}

// ActivityProvider obtiene la actividad de trading reciente de un wallet.
type ActivityProvider interface {
	// RecentTrades returns up to limit trades, newest first. A transient
	// gateway failure degrades to an empty slice with the error reported.
	RecentTrades(ctx context.Context, wallet string, limit int) ([]domain.Trade, error)
}

// PriceProvider obtiene precios actuales de un outcome token.
type PriceProvider interface {
	// GetQuote returns best bid/ask/mid for a token. Empty levels are zero.
	GetQuote(ctx context.Context, asset string) (domain.Quote, error)

	// ExecutionPrice returns the price obtainable right now for the given
	// side. Returns domain.ErrNoPrice when the book side is empty.
	ExecutionPrice(ctx context.Context, asset string, side domain.Side) (float64, error)
}

// WalletValuer calcula el valor total de un wallet (posiciones + USDC).
type WalletValuer interface {
	WalletValue(ctx context.Context, wallet string) (float64, error)
}

// Notifier presenta el estado del portfolio.
type Notifier interface {
	Status(ctx context.Context, report domain.Report) error
}
