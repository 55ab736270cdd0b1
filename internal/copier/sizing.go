package copier

import (
	"fmt"
	"math"
)

// MinNotional es el suelo por debajo del cual un copy trade se descarta
// por fondos insuficientes.
const MinNotional = 0.5

// SizingMode selecciona la política de sizing.
type SizingMode string

const (
	// SizingFixed copia cada trade con un notional fijo.
	SizingFixed SizingMode = "fixed"
	// SizingPercentOfTrade copia un porcentaje del notional original.
	SizingPercentOfTrade SizingMode = "percent_of_trade"
	// SizingPercentOfPortfolio copia un porcentaje del valor total del fondo.
	SizingPercentOfPortfolio SizingMode = "percent_of_portfolio"
	// SizingProportional copia proporcionalmente al budget asignado sobre
	// el valor del wallet seguido.
	SizingProportional SizingMode = "proportional"
)

// ParseSizingMode valida un modo de sizing de la configuración.
func ParseSizingMode(s string) (SizingMode, error) {
	switch m := SizingMode(s); m {
	case SizingFixed, SizingPercentOfTrade, SizingPercentOfPortfolio, SizingProportional:
		return m, nil
	}
	return "", fmt.Errorf("unknown sizing mode %q", s)
}

// FundView es la vista del estado del fondo que el sizing necesita.
// El Monitor la construye en el momento de cada trade detectado.
type FundView struct {
	Cash           float64 // cash disponible
	PortfolioValue float64 // cash + posiciones a precio actual
	Allocated      float64 // budget del wallet (modo proporcional)
	WalletValue    float64 // valor observado del wallet (modo proporcional)
}

// Sizer computes the copy notional for a source trade. Pure function of the
// trade and the current fund state; no side effects.
type Sizer struct {
	Mode               SizingMode
	FixedSize          float64
	PercentOfTrade     float64
	PercentOfPortfolio float64
}

// Notional devuelve el importe en USDC a copiar. Cero o por debajo de
// MinNotional significa "skip por fondos". Los modos de capital fijo se
// limitan siempre al cash disponible.
func (s Sizer) Notional(sourceNotional float64, view FundView) float64 {
	switch s.Mode {
	case SizingFixed:
		return math.Min(s.FixedSize, view.Cash)
	case SizingPercentOfTrade:
		return math.Min(sourceNotional*s.PercentOfTrade, view.Cash)
	case SizingPercentOfPortfolio:
		return math.Min(view.PortfolioValue*s.PercentOfPortfolio, view.Cash)
	case SizingProportional:
		if view.WalletValue <= 0 {
			return 0
		}
		ratio := view.Allocated / view.WalletValue
		return math.Min(math.Floor(sourceNotional*ratio), view.Cash)
	}
	return 0
}
