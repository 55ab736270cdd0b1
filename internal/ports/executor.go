package ports

import (
	"context"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// OrderExecutor places real market orders on the Polymarket CLOB.
type OrderExecutor interface {
	// PlaceMarketOrder signs and submits a FOK market order for the given
	// notional. price is the current executable price, used as the
	// marketable limit. Retries are bounded and internal to the executor;
	// an error after retries means the trade is dropped, never applied.
	PlaceMarketOrder(ctx context.Context, asset string, side domain.Side, notional, price float64) (domain.OrderResult, error)
}
