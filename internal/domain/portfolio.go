package domain

// DustThreshold is the minimum position size in shares. Positions below it
// are considered fully closed and removed from the ledger.
const DustThreshold = 0.001

// Position is the current holding in one outcome token. Mutated only by the
// Ledger when a validated execution is applied.
type Position struct {
	Size     float64 `json:"size"`      // shares held, >= 0
	AvgPrice float64 `json:"avg_price"` // cost-weighted mean of open BUY fills
	Title    string  `json:"title"`
	Outcome  string  `json:"outcome"`
	CurPrice float64 `json:"current_price,omitempty"` // valuation only, refreshed lazily
}

// MarketValue returns the position value at the last known price, falling
// back to the average cost when no current price has been observed.
func (p Position) MarketValue() float64 {
	price := p.CurPrice
	if price <= 0 {
		price = p.AvgPrice
	}
	return p.Size * price
}

// UnrealizedPnL returns the paper gain/loss at the last known price.
func (p Position) UnrealizedPnL() float64 {
	if p.CurPrice <= 0 {
		return 0
	}
	return p.Size * (p.CurPrice - p.AvgPrice)
}

// Fill records one copy trade applied to the ledger. Append-only.
// The JSON tags are the persisted snapshot format.
type Fill struct {
	Time      int64   `json:"time"` // unix seconds
	Side      Side    `json:"side"`
	Shares    float64 `json:"shares"`
	ExecPrice float64 `json:"exec_price"`
	OrigPrice float64 `json:"orig_price"`
	Slippage  float64 `json:"slippage"`
	Notional  float64 `json:"usdc"`
	Asset     string  `json:"asset"`
	Title     string  `json:"title"` // truncated to 50 chars
}

// ID devuelve el identificador de dedup reconstruido desde el fill.
func (f Fill) ID() string {
	return TradeID(f.Time, f.Asset, f.Side)
}

// SkipReason clasifica por qué un trade detectado no se copió.
type SkipReason string

const (
	SkipNoPrice     SkipReason = "no_price"
	SkipPriceRange  SkipReason = "price_out_of_range"
	SkipSlippage    SkipReason = "slippage_exceeded"
	SkipFunds       SkipReason = "insufficient_funds"
	SkipNoPosition  SkipReason = "no_position_to_sell"
	SkipOrderFailed SkipReason = "order_failed"
)

// Stats are monotonically increasing counters used only for reporting.
type Stats struct {
	Detected        int     `json:"detected"`
	Copied          int     `json:"copied"`
	SkippedSlippage int     `json:"skipped_slippage"`
	SkippedFunds    int     `json:"skipped_funds"`
	SkippedPrice    int     `json:"skipped_price"`
	SkippedPosition int     `json:"skipped_position"`
	FailedOrders    int     `json:"failed_orders"`
	TotalSlippage   float64 `json:"total_slippage"` // cumulative |slippage| of copied trades
}

// Skipped returns the total number of skipped trades across reasons.
func (s Stats) Skipped() int {
	return s.SkippedSlippage + s.SkippedFunds + s.SkippedPrice +
		s.SkippedPosition + s.FailedOrders
}

// AvgSlippage returns the mean absolute slippage per copied trade.
func (s Stats) AvgSlippage() float64 {
	if s.Copied == 0 {
		return 0
	}
	return s.TotalSlippage / float64(s.Copied)
}

// CountSkip incrementa el contador correspondiente al motivo.
func (s *Stats) CountSkip(reason SkipReason) {
	switch reason {
	case SkipNoPrice, SkipPriceRange:
		s.SkippedPrice++
	case SkipSlippage:
		s.SkippedSlippage++
	case SkipFunds:
		s.SkippedFunds++
	case SkipNoPosition:
		s.SkippedPosition++
	case SkipOrderFailed:
		s.FailedOrders++
	}
}

// WalletAllocation is the per-wallet budget used by proportional sizing.
// Value drifts as the source wallet trades, so it is refreshed lazily on
// every detected trade.
type WalletAllocation struct {
	Wallet    string
	Allocated float64 // budget assigned to copying this wallet, USDC
	Value     float64 // last observed total wallet value, USDC
}

// Snapshot is the persisted state document. Unknown fields in an existing
// file are ignored and missing fields default, so the format stays
// forward-readable.
type Snapshot struct {
	Timestamp   int64               `json:"timestamp"`
	Mode        string              `json:"mode"`
	Cash        float64             `json:"cash"`
	RealizedPnL float64             `json:"realized_pnl"`
	Positions   map[string]Position `json:"positions"`
	Trades      []Fill              `json:"trades"` // most recent 100
	Stats       Stats               `json:"stats"`
}

// Report is the portfolio status handed to the notifier.
type Report struct {
	Mode           string
	Cash           float64
	PositionsValue float64
	TotalValue     float64
	RealizedPnL    float64
	UnrealizedPnL  float64
	InitialCapital float64
	Positions      map[string]Position
	Stats          Stats
}

// TotalPnL returns realized plus unrealized P&L.
func (r Report) TotalPnL() float64 {
	return r.RealizedPnL + r.UnrealizedPnL
}

// PnLPercent returns total P&L relative to the initial capital.
func (r Report) PnLPercent() float64 {
	if r.InitialCapital == 0 {
		return 0
	}
	return r.TotalPnL() / r.InitialCapital * 100
}

// OrderResult is the broker-level confirmation of a placed market order.
type OrderResult struct {
	OrderID      string
	Status       string
	TakingAmount float64 // USDC
	MakingAmount float64 // USDC
}
