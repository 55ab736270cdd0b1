package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeID(t *testing.T) {
	trade := Trade{Timestamp: 1700000100, Asset: "tok1", Side: SideBuy}
	assert.Equal(t, "1700000100:tok1:BUY", trade.ID())

	// Mismo (ts, asset) pero side distinto es otro trade
	trade.Side = SideSell
	assert.Equal(t, "1700000100:tok1:SELL", trade.ID())
}

func TestSideValid(t *testing.T) {
	assert.True(t, SideBuy.Valid())
	assert.True(t, SideSell.Valid())
	assert.False(t, Side("MERGE").Valid())
	assert.False(t, Side("").Valid())
}

func TestSlippage_Directional(t *testing.T) {
	// BUY: pagar más es adverso (positivo)
	assert.InDelta(t, 0.04, Slippage(0.50, 0.52, SideBuy), 1e-9)
	assert.InDelta(t, -0.04, Slippage(0.50, 0.48, SideBuy), 1e-9)

	// SELL: recibir menos es adverso (positivo)
	assert.InDelta(t, 0.04, Slippage(0.50, 0.48, SideSell), 1e-9)
	assert.InDelta(t, -0.04, Slippage(0.50, 0.52, SideSell), 1e-9)

	// Precio original cero no divide
	assert.InDelta(t, 0, Slippage(0, 0.52, SideBuy), 1e-9)
}

func TestQuoteExecutionPrice(t *testing.T) {
	q := Quote{Bid: 0.48, Ask: 0.52, Mid: 0.50}

	p, err := q.ExecutionPrice(SideBuy)
	assert.NoError(t, err)
	assert.InDelta(t, 0.52, p, 1e-9)

	p, err = q.ExecutionPrice(SideSell)
	assert.NoError(t, err)
	assert.InDelta(t, 0.48, p, 1e-9)

	empty := Quote{}
	_, err = empty.ExecutionPrice(SideBuy)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestStatsCountSkip(t *testing.T) {
	var s Stats
	s.CountSkip(SkipNoPrice)
	s.CountSkip(SkipPriceRange)
	s.CountSkip(SkipSlippage)
	s.CountSkip(SkipFunds)
	s.CountSkip(SkipNoPosition)
	s.CountSkip(SkipOrderFailed)

	// no_price y price_out_of_range comparten contador
	assert.Equal(t, 2, s.SkippedPrice)
	assert.Equal(t, 1, s.SkippedSlippage)
	assert.Equal(t, 1, s.SkippedFunds)
	assert.Equal(t, 1, s.SkippedPosition)
	assert.Equal(t, 1, s.FailedOrders)
	assert.Equal(t, 6, s.Skipped())
}

func TestPositionValuation(t *testing.T) {
	pos := Position{Size: 20, AvgPrice: 0.50}

	// Sin precio actual: valor a coste, P&L no realizado cero
	assert.InDelta(t, 10, pos.MarketValue(), 1e-9)
	assert.InDelta(t, 0, pos.UnrealizedPnL(), 1e-9)

	pos.CurPrice = 0.60
	assert.InDelta(t, 12, pos.MarketValue(), 1e-9)
	assert.InDelta(t, 2, pos.UnrealizedPnL(), 1e-9)
}
