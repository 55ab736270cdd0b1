package domain

import (
	"errors"
	"fmt"
)

// Side es el lado de un trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reporta si el side es uno de los dos valores conocidos.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Trade es un trade observado en el wallet de un trader seguido.
// Inmutable una vez observado; identificado por (timestamp, asset, side).
type Trade struct {
	Wallet    string // proxy wallet del trader
	Trader    string // display name (informativo)
	Asset     string // token id del outcome
	Side      Side
	Price     float64 // precio del trade original
	Size      float64 // shares
	Notional  float64 // USDC
	Title     string
	Outcome   string
	Timestamp int64 // unix seconds
}

// ID devuelve el identificador estable del trade.
func (t Trade) ID() string {
	return TradeID(t.Timestamp, t.Asset, t.Side)
}

// TradeID construye el identificador "timestamp:asset:side".
func TradeID(ts int64, asset string, side Side) string {
	return fmt.Sprintf("%d:%s:%s", ts, asset, side)
}

// ErrNoPrice indica que no hay precio ejecutable para un token.
// Es una rama esperada del flujo, no un fallo del gateway.
var ErrNoPrice = errors.New("no tradable price available")

// Quote son los precios actuales de un token. Cero significa nivel vacío.
type Quote struct {
	Bid float64
	Ask float64
	Mid float64
}

// ExecutionPrice devuelve el precio ejecutable para un side:
// ask para BUY, bid para SELL. ErrNoPrice si el nivel está vacío.
func (q Quote) ExecutionPrice(side Side) (float64, error) {
	p := q.Bid
	if side == SideBuy {
		p = q.Ask
	}
	if p <= 0 {
		return 0, ErrNoPrice
	}
	return p, nil
}

// Slippage calcula el slippage relativo entre el precio original y el de
// ejecución, con signo según la dirección adversa: positivo cuando el precio
// empeoró para nosotros. source == 0 devuelve 0.
func Slippage(source, exec float64, side Side) float64 {
	if source == 0 {
		return 0
	}
	if side == SideBuy {
		return (exec - source) / source
	}
	return (source - exec) / source
}

// Truncate corta un string a maxLen caracteres.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
