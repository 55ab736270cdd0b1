package copier

// ledger.go — portfolio ledger del copytrading.
//
// El Ledger es el único dueño de cash, posiciones, realized P&L e historial
// de fills, más el estado de dedup (ids vistos, último timestamp por wallet).
// Toda mutación pasa por Apply; no hay estado ambiente.

import (
	"errors"
	"time"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// ErrNoPosition indica un SELL sobre un asset sin posición abierta.
var ErrNoPosition = errors.New("no position to sell")

// ErrInvalidSide indica un side que no es BUY ni SELL.
var ErrInvalidSide = errors.New("invalid trade side")

// maxPersistedFills es la retención del historial en el snapshot.
const maxPersistedFills = 100

// Ledger mantiene el estado del portfolio copiado. No es seguro para uso
// concurrente: hay un único mutador (el Monitor), por diseño.
type Ledger struct {
	cash      float64
	positions map[string]domain.Position
	realized  float64
	fills     []domain.Fill
	seen      map[string]struct{}
	lastTS    map[string]int64
}

// NewLedger crea un ledger con el capital inicial dado.
func NewLedger(cash float64) *Ledger {
	return &Ledger{
		cash:      cash,
		positions: make(map[string]domain.Position),
		seen:      make(map[string]struct{}),
		lastTS:    make(map[string]int64),
	}
}

// Restore carga el estado desde un snapshot y reconstruye el set de ids
// procesados a partir del historial de fills, usando el mismo esquema de
// identificador que el polling pero con el timestamp del propio fill.
func (l *Ledger) Restore(snap domain.Snapshot) {
	l.cash = snap.Cash
	l.realized = snap.RealizedPnL
	if snap.Positions != nil {
		l.positions = snap.Positions
	}
	l.fills = snap.Trades
	for _, f := range l.fills {
		l.seen[f.ID()] = struct{}{}
	}
}

// Apply aplica una ejecución validada al portfolio y devuelve el fill
// resultante. execPrice es el precio de ejecución ya validado por el guard;
// notional el importe calculado por el sizing.
//
// BUY: shares = notional / execPrice, cash baja por notional, avg price se
// recalcula como media ponderada por coste.
// SELL: shares limitado a la posición actual, realized P&L sube por
// (proceeds − coste base), posición eliminada bajo el dust threshold.
func (l *Ledger) Apply(trade domain.Trade, execPrice, notional, slippage float64) (domain.Fill, error) {
	shares := notional / execPrice
	actualNotional := notional

	switch trade.Side {
	case domain.SideBuy:
		l.cash -= notional

		pos, ok := l.positions[trade.Asset]
		if ok {
			totalCost := pos.Size*pos.AvgPrice + notional
			totalShares := pos.Size + shares
			pos.AvgPrice = totalCost / totalShares
			pos.Size = totalShares
		} else {
			pos = domain.Position{
				Size:     shares,
				AvgPrice: execPrice,
				Title:    trade.Title,
				Outcome:  trade.Outcome,
			}
		}
		l.positions[trade.Asset] = pos

	case domain.SideSell:
		pos, ok := l.positions[trade.Asset]
		if !ok {
			return domain.Fill{}, ErrNoPosition
		}

		if shares > pos.Size {
			shares = pos.Size
		}
		actualNotional = shares * execPrice

		costSold := shares * pos.AvgPrice
		l.realized += actualNotional - costSold
		l.cash += actualNotional

		pos.Size -= shares
		if pos.Size < domain.DustThreshold {
			delete(l.positions, trade.Asset)
		} else {
			l.positions[trade.Asset] = pos
		}

	default:
		return domain.Fill{}, ErrInvalidSide
	}

	fill := domain.Fill{
		Time:      time.Now().Unix(),
		Side:      trade.Side,
		Shares:    shares,
		ExecPrice: execPrice,
		OrigPrice: trade.Price,
		Slippage:  slippage,
		Notional:  actualNotional,
		Asset:     trade.Asset,
		Title:     domain.Truncate(trade.Title, 50),
	}
	l.fills = append(l.fills, fill)

	return fill, nil
}

// Seen reporta si un trade id ya fue procesado.
func (l *Ledger) Seen(id string) bool {
	_, ok := l.seen[id]
	return ok
}

// MarkSeen registra un trade id como procesado.
func (l *Ledger) MarkSeen(id string) {
	l.seen[id] = struct{}{}
}

// LastTimestamp devuelve el último timestamp procesado de un wallet.
func (l *Ledger) LastTimestamp(wallet string) int64 {
	return l.lastTS[wallet]
}

// AdvanceTimestamp avanza el cursor del wallet; nunca retrocede.
func (l *Ledger) AdvanceTimestamp(wallet string, ts int64) {
	if ts > l.lastTS[wallet] {
		l.lastTS[wallet] = ts
	}
}

// Cash devuelve el cash disponible.
func (l *Ledger) Cash() float64 { return l.cash }

// RealizedPnL devuelve el P&L realizado acumulado.
func (l *Ledger) RealizedPnL() float64 { return l.realized }

// Position devuelve la posición de un asset, si existe.
func (l *Ledger) Position(asset string) (domain.Position, bool) {
	pos, ok := l.positions[asset]
	return pos, ok
}

// Positions devuelve una copia del mapa de posiciones.
func (l *Ledger) Positions() map[string]domain.Position {
	out := make(map[string]domain.Position, len(l.positions))
	for k, v := range l.positions {
		out[k] = v
	}
	return out
}

// SetCurrentPrice actualiza el precio de valoración de una posición.
// Solo afecta a reporting, nunca al cost basis.
func (l *Ledger) SetCurrentPrice(asset string, price float64) {
	pos, ok := l.positions[asset]
	if !ok {
		return
	}
	pos.CurPrice = price
	l.positions[asset] = pos
}

// PositionsValue devuelve el valor de mercado de todas las posiciones.
func (l *Ledger) PositionsValue() float64 {
	total := 0.0
	for _, pos := range l.positions {
		total += pos.MarketValue()
	}
	return total
}

// UnrealizedPnL devuelve el P&L no realizado a los últimos precios vistos.
func (l *Ledger) UnrealizedPnL() float64 {
	total := 0.0
	for _, pos := range l.positions {
		total += pos.UnrealizedPnL()
	}
	return total
}

// Snapshot produce el documento persistible con los últimos 100 fills.
func (l *Ledger) Snapshot(mode string, stats domain.Stats) domain.Snapshot {
	fills := l.fills
	if len(fills) > maxPersistedFills {
		fills = fills[len(fills)-maxPersistedFills:]
	}
	return domain.Snapshot{
		Timestamp:   time.Now().Unix(),
		Mode:        mode,
		Cash:        l.cash,
		RealizedPnL: l.realized,
		Positions:   l.Positions(),
		Trades:      append([]domain.Fill(nil), fills...),
		Stats:       stats,
	}
}
