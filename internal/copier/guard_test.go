package copier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

func TestGuard_AcceptsWithinSlippage(t *testing.T) {
	g := DefaultGuard()
	trade := domain.Trade{Side: domain.SideBuy, Price: 0.50}

	// BUY a 0.52 sobre 0.50 = 4% — dentro del 5%
	slip, reason, ok := g.Check(trade, 0.52)
	assert.True(t, ok)
	assert.Empty(t, reason)
	assert.InDelta(t, 0.04, slip, 1e-9)
}

func TestGuard_RejectsExcessSlippage(t *testing.T) {
	g := DefaultGuard()
	trade := domain.Trade{Side: domain.SideBuy, Price: 0.50}

	// BUY a 0.53 sobre 0.50 = 6% — fuera
	slip, reason, ok := g.Check(trade, 0.53)
	assert.False(t, ok)
	assert.Equal(t, domain.SkipSlippage, reason)
	assert.InDelta(t, 0.06, slip, 1e-9)
}

func TestGuard_RejectsFavorableExcess(t *testing.T) {
	g := DefaultGuard()
	trade := domain.Trade{Side: domain.SideBuy, Price: 0.50}

	// Ejecutar 10% mejor que el original también se rechaza: un desvío tan
	// grande indica que el mercado ya no es el que operó el trader.
	_, reason, ok := g.Check(trade, 0.45)
	assert.False(t, ok)
	assert.Equal(t, domain.SkipSlippage, reason)
}

func TestGuard_SellSlippageDirection(t *testing.T) {
	g := DefaultGuard()
	trade := domain.Trade{Side: domain.SideSell, Price: 0.50}

	// SELL a 0.48: recibes menos → slippage positivo 4%
	slip, _, ok := g.Check(trade, 0.48)
	assert.True(t, ok)
	assert.InDelta(t, 0.04, slip, 1e-9)

	// SELL a 0.47: 6% — fuera
	_, reason, ok := g.Check(trade, 0.47)
	assert.False(t, ok)
	assert.Equal(t, domain.SkipSlippage, reason)
}

func TestGuard_PriceRange(t *testing.T) {
	g := DefaultGuard()
	trade := domain.Trade{Side: domain.SideBuy, Price: 0.005}

	_, reason, ok := g.Check(trade, 0.005)
	assert.False(t, ok)
	assert.Equal(t, domain.SkipPriceRange, reason)

	trade.Price = 0.995
	_, reason, ok = g.Check(trade, 0.995)
	assert.False(t, ok)
	assert.Equal(t, domain.SkipPriceRange, reason)

	// Los límites exactos pasan
	trade.Price = 0.01
	_, _, ok = g.Check(trade, 0.01)
	assert.True(t, ok)
}

func TestGuard_NoPrice(t *testing.T) {
	g := DefaultGuard()
	trade := domain.Trade{Side: domain.SideBuy, Price: 0.50}

	_, reason, ok := g.Check(trade, 0)
	assert.False(t, ok)
	assert.Equal(t, domain.SkipNoPrice, reason)
}
