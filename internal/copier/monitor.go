package copier

// monitor.go — loop de polling y pipeline de decisión.
//
// Un tick = poll secuencial de cada wallet seguido, en orden fijo. Los trades
// nuevos de cada poll se procesan de más antiguo a más reciente para preservar
// el orden del average-cost accounting. Sin concurrencia: un único mutador
// del ledger, sin locks, por diseño.

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
	"github.com/InkedLau/Polymarket-Copytrading/internal/ports"
)

// Operating modes. Live places real orders; debug only book-keeps.
const (
	ModeDebug = "debug"
	ModeLive  = "live"
)

// Config controla el comportamiento del monitor.
type Config struct {
	Mode           string        // ModeDebug | ModeLive
	PollInterval   time.Duration // pausa entre ticks
	StatusInterval time.Duration // cadencia del informe de estado
	FetchLimit     int           // trades por poll (default 20)
	CatchupLimit   int           // trades del pase inicial (default 10)
	InitialCapital float64
	Sizer          Sizer
	Guard          Guard
	Allocations    map[string]float64 // wallet -> budget (modo proporcional)
}

// DefaultConfig devuelve una configuración sensata de simulación.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeDebug,
		PollInterval:   3 * time.Second,
		StatusInterval: 2 * time.Minute,
		FetchLimit:     20,
		CatchupLimit:   10,
		InitialCapital: 1000,
		Sizer:          Sizer{Mode: SizingFixed, FixedSize: 10},
		Guard:          DefaultGuard(),
	}
}

// Deps son los colaboradores externos del monitor.
type Deps struct {
	Activity ports.ActivityProvider
	Prices   ports.PriceProvider
	Valuer   ports.WalletValuer  // requerido en modo proporcional
	Executor ports.OrderExecutor // requerido en modo live
	Store    ports.SnapshotStore
	Journal  ports.Journal // opcional
	Notifier ports.Notifier
}

// Monitor es el coordinador de dedup y polling.
type Monitor struct {
	cfg     Config
	wallets map[string]string // wallet -> display name
	order   []string          // orden de iteración fijo
	ledger  *Ledger
	stats   domain.Stats
	allocs  map[string]*domain.WalletAllocation
	deps    Deps
}

// NewMonitor crea un monitor para los wallets dados (wallet -> display name).
func NewMonitor(cfg Config, wallets map[string]string, deps Deps) *Monitor {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 20
	}
	if cfg.CatchupLimit <= 0 {
		cfg.CatchupLimit = 10
	}

	order := make([]string, 0, len(wallets))
	for w := range wallets {
		order = append(order, w)
	}
	sort.Strings(order)

	// Las claves del resolver de perfiles vienen en minúsculas; las del YAML
	// pueden venir checksummed. Se normalizan aquí para que casen.
	allocs := make(map[string]*domain.WalletAllocation, len(cfg.Allocations))
	for w, budget := range cfg.Allocations {
		w = strings.ToLower(w)
		allocs[w] = &domain.WalletAllocation{Wallet: w, Allocated: budget}
	}

	return &Monitor{
		cfg:     cfg,
		wallets: wallets,
		order:   order,
		ledger:  NewLedger(cfg.InitialCapital),
		allocs:  allocs,
		deps:    deps,
	}
}

// Ledger expone el ledger para inspección (reporting y tests).
func (m *Monitor) Ledger() *Ledger { return m.ledger }

// Stats devuelve los contadores acumulados.
func (m *Monitor) Stats() domain.Stats { return m.stats }

// Init restaura el snapshot previo si existe y ejecuta el pase de catch-up:
// la actividad histórica de cada wallet se marca como procesada sin copiarla,
// de modo que solo se copian trades posteriores al arranque.
func (m *Monitor) Init(ctx context.Context) error {
	if m.deps.Store != nil {
		snap, ok, err := m.deps.Store.Load()
		switch {
		case err != nil:
			slog.Warn("state load failed, starting fresh", "err", err)
		case ok:
			m.ledger.Restore(snap)
			m.stats = snap.Stats
			slog.Info("state restored",
				"cash", m.ledger.Cash(),
				"positions", len(m.ledger.Positions()),
				"fills", len(snap.Trades),
			)
		}
	}

	for _, wallet := range m.order {
		trades, err := m.deps.Activity.RecentTrades(ctx, wallet, m.cfg.CatchupLimit)
		if err != nil {
			slog.Warn("catch-up fetch failed", "wallet", shortWallet(wallet), "err", err)
			continue
		}
		var newest int64
		for _, t := range trades {
			m.ledger.MarkSeen(t.ID())
			if t.Timestamp > newest {
				newest = t.Timestamp
			}
		}
		m.ledger.AdvanceTimestamp(wallet, newest)
		slog.Info("watching trader",
			"trader", m.wallets[wallet],
			"wallet", shortWallet(wallet),
			"last_trade", formatUnix(newest),
		)
	}
	return nil
}

// Run ejecuta el loop de polling hasta que el contexto se cancele. Al salir
// emite un informe final y persiste el estado.
func (m *Monitor) Run(ctx context.Context) error {
	slog.Info("copier starting",
		"mode", m.cfg.Mode,
		"wallets", len(m.order),
		"sizing", string(m.cfg.Sizer.Mode),
		"max_slippage", m.cfg.Guard.MaxSlippage,
		"poll", m.cfg.PollInterval,
	)

	m.printStatus(ctx)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()
	statusTicker := time.NewTicker(m.cfg.StatusInterval)
	defer statusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return nil
		case <-statusTicker.C:
			m.printStatus(ctx)
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce ejecuta exactamente un tick: poll de todos los wallets en orden.
func (m *Monitor) RunOnce(ctx context.Context) {
	for _, wallet := range m.order {
		m.pollWallet(ctx, wallet)
	}
}

// pollWallet trae la actividad reciente de un wallet y procesa los trades
// elegibles. Un trade es elegible si su id no se vio antes Y su timestamp
// supera estrictamente el último procesado del wallet — las dos condiciones
// se evalúan siempre, para cubrir la colisión de ids distintos con mismo
// (timestamp, asset, side). Tras el poll, todos los ids vistos quedan
// marcados (un trade rechazado no se reintenta) y el cursor avanza al
// timestamp máximo del lote.
func (m *Monitor) pollWallet(ctx context.Context, wallet string) {
	trades, err := m.deps.Activity.RecentTrades(ctx, wallet, m.cfg.FetchLimit)
	if err != nil {
		// Transitorio: nada se marca procesado, se reintenta al siguiente tick.
		slog.Warn("activity fetch failed", "wallet", shortWallet(wallet), "err", err)
		return
	}
	if len(trades) == 0 {
		return
	}

	lastTS := m.ledger.LastTimestamp(wallet)
	var eligible []domain.Trade
	var newest int64

	for _, t := range trades {
		if t.Timestamp > newest {
			newest = t.Timestamp
		}
		if !m.ledger.Seen(t.ID()) && t.Timestamp > lastTS {
			// Marcado al seleccionar: un lote puede traer dos registros con
			// la misma identidad (una orden taker partida en varios fills) y
			// solo el primero debe copiarse.
			m.ledger.MarkSeen(t.ID())
			t.Wallet = wallet
			t.Trader = m.wallets[wallet]
			eligible = append(eligible, t)
		}
	}

	// Más antiguo primero: el orden de aplicación fija el average cost.
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].Timestamp < eligible[j].Timestamp
	})
	for _, t := range eligible {
		m.processTrade(ctx, t)
	}

	for _, t := range trades {
		m.ledger.MarkSeen(t.ID())
	}
	m.ledger.AdvanceTimestamp(wallet, newest)
}

// processTrade pasa un trade detectado por el pipeline completo:
// sizing → precio → guard → (orden live) → ledger → persistencia.
func (m *Monitor) processTrade(ctx context.Context, t domain.Trade) {
	m.stats.Detected++

	slog.Info("trade detected",
		"trader", t.Trader,
		"side", string(t.Side),
		"size", t.Size,
		"price", t.Price,
		"notional", t.Notional,
		"market", domain.Truncate(t.Title, 55),
		"outcome", t.Outcome,
	)

	notional := m.cfg.Sizer.Notional(t.Notional, m.fundView(ctx, t.Wallet))
	if notional < MinNotional {
		m.skip(ctx, t, domain.SkipFunds, slog.Float64("cash", m.ledger.Cash()))
		return
	}

	execPrice, err := m.deps.Prices.ExecutionPrice(ctx, t.Asset, t.Side)
	if err != nil {
		if !errors.Is(err, domain.ErrNoPrice) {
			slog.Warn("price fetch failed", "asset", t.Asset, "err", err)
		}
		m.skip(ctx, t, domain.SkipNoPrice)
		return
	}

	slippage, reason, ok := m.cfg.Guard.Check(t, execPrice)
	if !ok {
		m.skip(ctx, t, reason,
			slog.Float64("orig_price", t.Price),
			slog.Float64("exec_price", execPrice),
			slog.Float64("slippage", slippage),
		)
		return
	}

	if t.Side == domain.SideSell {
		if _, held := m.ledger.Position(t.Asset); !held {
			m.skip(ctx, t, domain.SkipNoPosition)
			return
		}
	}

	// En live la orden va ANTES de cualquier mutación del ledger; el ledger
	// solo se toca si el broker confirma.
	if m.cfg.Mode == ModeLive && m.deps.Executor != nil {
		res, err := m.deps.Executor.PlaceMarketOrder(ctx, t.Asset, t.Side, notional, execPrice)
		if err != nil {
			slog.Error("order failed, trade dropped", "err", err)
			m.skip(ctx, t, domain.SkipOrderFailed)
			return
		}
		slog.Info("live order placed", "order_id", res.OrderID, "status", res.Status)
	}

	fill, err := m.ledger.Apply(t, execPrice, notional, slippage)
	if err != nil {
		slog.Warn("fill not applied", "err", err)
		m.skip(ctx, t, domain.SkipNoPosition)
		return
	}

	m.stats.Copied++
	m.stats.TotalSlippage += math.Abs(slippage)

	slog.Info("trade copied",
		"mode", m.cfg.Mode,
		"side", string(fill.Side),
		"shares", fill.Shares,
		"exec_price", fill.ExecPrice,
		"slippage", fill.Slippage,
		"notional", fill.Notional,
	)

	if m.deps.Journal != nil {
		if err := m.deps.Journal.RecordFill(ctx, t.Wallet, fill); err != nil {
			slog.Warn("journal write failed", "err", err)
		}
	}
	m.persist()
}

// skip registra un trade no copiado con su motivo. No es un error: es el
// estado estable esperado bajo condiciones de mercado reales.
func (m *Monitor) skip(ctx context.Context, t domain.Trade, reason domain.SkipReason, attrs ...slog.Attr) {
	m.stats.CountSkip(reason)

	args := make([]any, 0, 2+2*len(attrs))
	args = append(args, "reason", string(reason))
	for _, a := range attrs {
		args = append(args, a.Key, a.Value.Any())
	}
	slog.Info("trade skipped", args...)

	if m.deps.Journal != nil {
		if err := m.deps.Journal.RecordSkip(ctx, t, reason); err != nil {
			slog.Warn("journal write failed", "err", err)
		}
	}
}

// fundView construye la vista del fondo para el sizing. En modo proporcional
// refresca el valor del wallet en cada trade, porque deriva según el trader
// opera.
func (m *Monitor) fundView(ctx context.Context, wallet string) FundView {
	view := FundView{
		Cash:           m.ledger.Cash(),
		PortfolioValue: m.ledger.Cash() + m.ledger.PositionsValue(),
	}

	alloc, ok := m.allocs[wallet]
	if !ok || m.deps.Valuer == nil {
		return view
	}

	value, err := m.deps.Valuer.WalletValue(ctx, wallet)
	if err != nil {
		slog.Warn("wallet value fetch failed", "wallet", shortWallet(wallet), "err", err)
	} else if value > 0 {
		alloc.Value = value
	}

	view.Allocated = alloc.Allocated
	view.WalletValue = alloc.Value
	return view
}

// persist escribe el snapshot tras cada fill aplicado. Un fallo de escritura
// se reporta pero no toca el ledger: el ledger es la fuente de verdad.
func (m *Monitor) persist() {
	if m.deps.Store == nil {
		return
	}
	if err := m.deps.Store.Save(m.ledger.Snapshot(m.cfg.Mode, m.stats)); err != nil {
		slog.Error("snapshot write failed", "err", err)
	}
}

// printStatus refresca los precios de valoración y emite el informe.
func (m *Monitor) printStatus(ctx context.Context) {
	for asset := range m.ledger.Positions() {
		quote, err := m.deps.Prices.GetQuote(ctx, asset)
		if err == nil && quote.Mid > 0 {
			m.ledger.SetCurrentPrice(asset, quote.Mid)
		}
	}

	report := domain.Report{
		Mode:           m.cfg.Mode,
		Cash:           m.ledger.Cash(),
		PositionsValue: m.ledger.PositionsValue(),
		RealizedPnL:    m.ledger.RealizedPnL(),
		UnrealizedPnL:  m.ledger.UnrealizedPnL(),
		InitialCapital: m.cfg.InitialCapital,
		Positions:      m.ledger.Positions(),
		Stats:          m.stats,
	}
	report.TotalValue = report.Cash + report.PositionsValue

	if m.deps.Notifier != nil {
		if err := m.deps.Notifier.Status(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
}

// shutdown emite el informe final y persiste el estado antes de salir.
func (m *Monitor) shutdown() {
	slog.Info("copier stopping")
	m.printStatus(context.Background())
	m.persist()
	if m.deps.Journal != nil {
		if err := m.deps.Journal.CloseRun(context.Background(), m.stats); err != nil {
			slog.Warn("journal close failed", "err", err)
		}
	}
}

func shortWallet(w string) string {
	if len(w) <= 12 {
		return w
	}
	return w[:12] + "..."
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "never"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}
