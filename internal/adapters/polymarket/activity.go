package polymarket

// activity.go — feed de trades de un wallet vía Data API /activity.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// rawActivity es el registro crudo de la Data API. Los campos numéricos
// llegan a veces como número y a veces como string; json.Number cubre ambos.
type rawActivity struct {
	ProxyWallet string      `json:"proxyWallet"`
	Timestamp   json.Number `json:"timestamp"`
	Asset       string      `json:"asset"`
	ConditionID string      `json:"conditionId"`
	Type        string      `json:"type"`
	Side        string      `json:"side"`
	Size        json.Number `json:"size"`
	Price       json.Number `json:"price"`
	USDCSize    json.Number `json:"usdcSize"`
	Title       string      `json:"title"`
	Outcome     string      `json:"outcome"`
}

// RecentTrades devuelve los últimos trades de un wallet, más reciente
// primero. Los registros sin asset o con side desconocido se descartan en
// esta frontera; el resto de campos opcionales tienen default vacío/cero.
func (c *Client) RecentTrades(ctx context.Context, wallet string, limit int) ([]domain.Trade, error) {
	params := url.Values{}
	params.Set("user", wallet)
	params.Set("type", "TRADE")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sortBy", "TIMESTAMP")
	params.Set("sortDirection", "DESC")

	var resp []rawActivity
	if err := c.get(ctx, c.dataLimiter, queryURL(c.dataBase, "/activity", params), &resp); err != nil {
		return nil, fmt.Errorf("data-api.RecentTrades: %w", err)
	}

	trades := make([]domain.Trade, 0, len(resp))
	for _, ra := range resp {
		side := domain.Side(ra.Side)
		if ra.Asset == "" || !side.Valid() {
			continue
		}

		price, _ := ra.Price.Float64()
		size, _ := ra.Size.Float64()
		notional, _ := ra.USDCSize.Float64()
		ts := parseUnixSeconds(ra.Timestamp)

		trades = append(trades, domain.Trade{
			Wallet:    wallet,
			Asset:     ra.Asset,
			Side:      side,
			Price:     price,
			Size:      size,
			Notional:  notional,
			Title:     ra.Title,
			Outcome:   ra.Outcome,
			Timestamp: ts,
		})
	}

	return trades, nil
}

// parseUnixSeconds tolera timestamps como entero, float o milisegundos.
func parseUnixSeconds(n json.Number) int64 {
	if sec, err := n.Int64(); err == nil {
		if sec > 1e12 {
			return sec / 1000
		}
		return sec
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}
