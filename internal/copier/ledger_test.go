package copier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

func buyTrade(asset string, price, notional float64) domain.Trade {
	return domain.Trade{
		Asset:    asset,
		Side:     domain.SideBuy,
		Price:    price,
		Size:     notional / price,
		Notional: notional,
		Title:    "Will it rain tomorrow?",
		Outcome:  "Yes",
	}
}

func sellTrade(asset string, price, notional float64) domain.Trade {
	t := buyTrade(asset, price, notional)
	t.Side = domain.SideSell
	return t
}

func TestLedger_BuyOpensPosition(t *testing.T) {
	l := NewLedger(1000)

	fill, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)

	assert.InDelta(t, 990, l.Cash(), 1e-9)
	assert.InDelta(t, 20, fill.Shares, 1e-9)

	pos, ok := l.Position("tok1")
	require.True(t, ok)
	assert.InDelta(t, 20, pos.Size, 1e-9)
	assert.InDelta(t, 0.50, pos.AvgPrice, 1e-9)
	assert.Equal(t, "Yes", pos.Outcome)
}

func TestLedger_BuyAveragesCost(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Apply(buyTrade("tok1", 0.40, 10), 0.40, 10, 0)
	require.NoError(t, err)
	_, err = l.Apply(buyTrade("tok1", 0.60, 12), 0.60, 12, 0)
	require.NoError(t, err)

	pos, ok := l.Position("tok1")
	require.True(t, ok)
	// 25 shares a 0.40 + 20 shares a 0.60 = 45 shares, coste 22
	assert.InDelta(t, 45, pos.Size, 1e-9)
	assert.InDelta(t, 22.0/45.0, pos.AvgPrice, 1e-9)
}

func TestLedger_AvgCostIndependentOfOrder(t *testing.T) {
	a := NewLedger(1000)
	b := NewLedger(1000)

	_, _ = a.Apply(buyTrade("tok1", 0.40, 10), 0.40, 10, 0)
	_, _ = a.Apply(buyTrade("tok1", 0.60, 12), 0.60, 12, 0)

	_, _ = b.Apply(buyTrade("tok1", 0.60, 12), 0.60, 12, 0)
	_, _ = b.Apply(buyTrade("tok1", 0.40, 10), 0.40, 10, 0)

	posA, _ := a.Position("tok1")
	posB, _ := b.Position("tok1")
	assert.InDelta(t, posA.AvgPrice, posB.AvgPrice, 1e-9)
	assert.InDelta(t, posA.Size, posB.Size, 1e-9)
}

func TestLedger_SellRealizesPnL(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)

	// Vende la mitad (10 shares) a 0.60: proceeds 6, coste 5
	fill, err := l.Apply(sellTrade("tok1", 0.60, 6), 0.60, 6, 0)
	require.NoError(t, err)

	assert.InDelta(t, 10, fill.Shares, 1e-9)
	assert.InDelta(t, 1.0, l.RealizedPnL(), 1e-9)
	assert.InDelta(t, 996, l.Cash(), 1e-9)

	pos, ok := l.Position("tok1")
	require.True(t, ok)
	assert.InDelta(t, 10, pos.Size, 1e-9)
	assert.InDelta(t, 0.50, pos.AvgPrice, 1e-9) // el avg no cambia al vender
}

func TestLedger_SellCappedAtHeldSize(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)

	// Pide vender 100 USDC (200 shares) pero solo hay 20
	fill, err := l.Apply(sellTrade("tok1", 0.50, 100), 0.50, 100, 0)
	require.NoError(t, err)

	assert.InDelta(t, 20, fill.Shares, 1e-9)
	assert.InDelta(t, 10, fill.Notional, 1e-9) // 20 × 0.50, no 100

	_, ok := l.Position("tok1")
	assert.False(t, ok, "la posición debe quedar cerrada, nunca negativa")
}

func TestLedger_SellWithoutPosition(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Apply(sellTrade("tok1", 0.50, 10), 0.50, 10, 0)
	assert.ErrorIs(t, err, ErrNoPosition)
	assert.InDelta(t, 1000, l.Cash(), 1e-9)
}

func TestLedger_InvalidSideRejected(t *testing.T) {
	l := NewLedger(1000)

	bad := buyTrade("tok1", 0.50, 10)
	bad.Side = domain.Side("MERGE")

	_, err := l.Apply(bad, 0.50, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidSide)
	assert.InDelta(t, 1000, l.Cash(), 1e-9)

	// Ningún fill queda registrado
	snap := l.Snapshot("debug", domain.Stats{})
	assert.Empty(t, snap.Trades)
}

func TestLedger_FlatRoundTripPnLZero(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)
	_, err = l.Apply(sellTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)

	assert.InDelta(t, 0, l.RealizedPnL(), 1e-9)
	assert.InDelta(t, 1000, l.Cash(), 1e-9)
	_, ok := l.Position("tok1")
	assert.False(t, ok)
}

func TestLedger_DustPositionRemoved(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)

	// Deja menos de DustThreshold shares
	notional := (20 - domain.DustThreshold/2) * 0.50
	_, err = l.Apply(sellTrade("tok1", 0.50, notional), 0.50, notional, 0)
	require.NoError(t, err)

	_, ok := l.Position("tok1")
	assert.False(t, ok)
}

func TestLedger_TimestampCursorNeverRegresses(t *testing.T) {
	l := NewLedger(1000)

	l.AdvanceTimestamp("0xw", 100)
	l.AdvanceTimestamp("0xw", 50)
	assert.Equal(t, int64(100), l.LastTimestamp("0xw"))

	l.AdvanceTimestamp("0xw", 200)
	assert.Equal(t, int64(200), l.LastTimestamp("0xw"))
}

func TestLedger_SnapshotRoundTrip(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)
	_, err = l.Apply(buyTrade("tok2", 0.25, 5), 0.25, 5, 0)
	require.NoError(t, err)
	l.AdvanceTimestamp("0xw", 123)

	snap := l.Snapshot(ModeDebug, domain.Stats{Detected: 2, Copied: 2})
	assert.Equal(t, ModeDebug, snap.Mode)
	assert.Len(t, snap.Trades, 2)

	restored := NewLedger(0)
	restored.Restore(snap)

	assert.InDelta(t, l.Cash(), restored.Cash(), 1e-9)
	assert.InDelta(t, l.RealizedPnL(), restored.RealizedPnL(), 1e-9)
	assert.Equal(t, l.Positions(), restored.Positions())

	// Los fills restaurados alimentan el dedup
	for _, f := range snap.Trades {
		assert.True(t, restored.Seen(f.ID()))
	}
}

func TestLedger_SnapshotKeepsLast100Fills(t *testing.T) {
	l := NewLedger(100000)
	for i := 0; i < 150; i++ {
		_, err := l.Apply(buyTrade("tok1", 0.50, 1), 0.50, 1, 0)
		require.NoError(t, err)
	}

	snap := l.Snapshot(ModeDebug, domain.Stats{})
	assert.Len(t, snap.Trades, 100)
}

func TestLedger_UnrealizedPnL(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Apply(buyTrade("tok1", 0.50, 10), 0.50, 10, 0)
	require.NoError(t, err)

	// Sin precio actual no hay valoración
	assert.InDelta(t, 0, l.UnrealizedPnL(), 1e-9)

	l.SetCurrentPrice("tok1", 0.60)
	assert.InDelta(t, 20*0.10, l.UnrealizedPnL(), 1e-9)
	assert.InDelta(t, 12, l.PositionsValue(), 1e-9)
}
