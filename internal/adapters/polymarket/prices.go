package polymarket

// prices.go — precios ejecutables vía CLOB /price y /midpoint.
//
// Implementa ports.PriceProvider. Cada endpoint degrada individualmente a
// nivel vacío (cero) ante fallo transitorio; "sin precio" es una rama
// explícita (domain.ErrNoPrice), nunca un cero silencioso al caller.

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

type priceResponse struct {
	Price json.Number `json:"price"`
}

type midpointResponse struct {
	Mid json.Number `json:"mid"`
}

// GetQuote devuelve bid/ask/mid para un token. Niveles sin datos quedan a
// cero; si solo hay mid, bid/ask se aproximan a ±0.005; si solo hay
// bid/ask, el mid es su media.
func (c *Client) GetQuote(ctx context.Context, asset string) (domain.Quote, error) {
	var q domain.Quote

	q.Bid = c.fetchSidePrice(ctx, asset, "SELL")
	q.Ask = c.fetchSidePrice(ctx, asset, "BUY")

	params := url.Values{}
	params.Set("token_id", asset)
	var mid midpointResponse
	if err := c.get(ctx, c.clobLimiter, queryURL(c.clobBase, "/midpoint", params), &mid); err != nil {
		slog.Debug("midpoint fetch failed", "asset", asset, "err", err)
	} else {
		q.Mid, _ = mid.Mid.Float64()
	}

	if q.Bid == 0 && q.Ask == 0 && q.Mid > 0 {
		q.Bid = q.Mid - 0.005
		q.Ask = q.Mid + 0.005
	}
	if q.Mid == 0 && q.Bid > 0 && q.Ask > 0 {
		q.Mid = (q.Bid + q.Ask) / 2
	}

	return q, nil
}

// ExecutionPrice devuelve ask para BUY y bid para SELL, o ErrNoPrice si el
// nivel está vacío.
func (c *Client) ExecutionPrice(ctx context.Context, asset string, side domain.Side) (float64, error) {
	q, err := c.GetQuote(ctx, asset)
	if err != nil {
		return 0, err
	}
	return q.ExecutionPrice(side)
}

// fetchSidePrice consulta /price para un side del book. Cero si falla.
func (c *Client) fetchSidePrice(ctx context.Context, asset, side string) float64 {
	params := url.Values{}
	params.Set("token_id", asset)
	params.Set("side", side)

	var resp priceResponse
	if err := c.get(ctx, c.clobLimiter, queryURL(c.clobBase, "/price", params), &resp); err != nil {
		slog.Debug("price fetch failed", "asset", asset, "side", side, "err", err)
		return 0
	}
	p, _ := resp.Price.Float64()
	return p
}
