package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Status imprime el estado del portfolio en el modo configurado.
func (c *Console) Status(_ context.Context, r domain.Report) error {
	if c.table {
		c.printFull(r)
	} else {
		c.printCompact(r)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r domain.Report) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "[%s][%s] cash $%.2f | %d pos $%.2f | total $%.2f | pnl $%+.2f (%.2f%%) | copied %d/%d skipped %d\n",
		now, modeLabel(r.Mode),
		r.Cash, len(r.Positions), r.PositionsValue, r.TotalValue,
		r.TotalPnL(), r.PnLPercent(),
		r.Stats.Copied, r.Stats.Detected, r.Stats.Skipped())
}

// printFull imprime la tabla de posiciones y el resumen de la sesión.
func (c *Console) printFull(r domain.Report) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] PORTFOLIO — mode %s\n", now, modeLabel(r.Mode))

	if len(r.Positions) > 0 {
		c.printPositions(r)
	} else {
		fmt.Fprintln(c.out, "  (no open positions)")
	}

	fmt.Fprintf(c.out, "\n  Cash:            $%.2f\n", r.Cash)
	fmt.Fprintf(c.out, "  Positions value: $%.2f\n", r.PositionsValue)
	fmt.Fprintf(c.out, "  Total value:     $%.2f (started $%.2f)\n", r.TotalValue, r.InitialCapital)
	fmt.Fprintf(c.out, "  Realized P&L:    $%+.2f\n", r.RealizedPnL)
	fmt.Fprintf(c.out, "  Unrealized P&L:  $%+.2f\n", r.UnrealizedPnL)
	fmt.Fprintf(c.out, "  Total P&L:       $%+.2f (%.2f%%)\n", r.TotalPnL(), r.PnLPercent())

	s := r.Stats
	fmt.Fprintf(c.out, "\n  Detected %d | copied %d | skipped: slippage %d, funds %d, price %d, position %d | failed %d",
		s.Detected, s.Copied,
		s.SkippedSlippage, s.SkippedFunds, s.SkippedPrice, s.SkippedPosition,
		s.FailedOrders)
	if s.Copied > 0 {
		fmt.Fprintf(c.out, " | avg slippage %.2f%%", s.AvgSlippage()*100)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out)
}

// printPositions imprime la tabla de posiciones abiertas, mayores primero.
func (c *Console) printPositions(r domain.Report) {
	assets := make([]string, 0, len(r.Positions))
	for asset := range r.Positions {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		return r.Positions[assets[i]].MarketValue() > r.Positions[assets[j]].MarketValue()
	})

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Outcome", "Shares", "Avg", "Cur", "Value", "P&L")

	for _, asset := range assets {
		pos := r.Positions[asset]

		name := pos.Title
		if name == "" {
			name = domain.Truncate(asset, 20)
		}

		curLabel := "-"
		pnlLabel := "-"
		if pos.CurPrice > 0 {
			curLabel = fmt.Sprintf("%.3f", pos.CurPrice)
			pnlLabel = fmt.Sprintf("$%+.2f", pos.UnrealizedPnL())
		}

		table.Append(
			domain.Truncate(name, 38),
			pos.Outcome,
			fmt.Sprintf("%.2f", pos.Size),
			fmt.Sprintf("%.3f", pos.AvgPrice),
			curLabel,
			fmt.Sprintf("$%.2f", pos.MarketValue()),
			pnlLabel,
		)
	}

	table.Render()
}

func modeLabel(mode string) string {
	if mode == "live" {
		return "LIVE"
	}
	return "DEBUG"
}
