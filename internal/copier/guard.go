package copier

import (
	"math"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// Guard valida el precio de ejecución de un candidato a copy trade.
// Los rechazos son comportamiento esperado en mercado vivo, no errores.
type Guard struct {
	MinPrice    float64 // límite inferior del dominio de precios (default 0.01)
	MaxPrice    float64 // límite superior (default 0.99)
	MaxSlippage float64 // |slippage| máximo tolerado (default 0.05)
}

// DefaultGuard devuelve los límites por defecto del exchange.
func DefaultGuard() Guard {
	return Guard{MinPrice: 0.01, MaxPrice: 0.99, MaxSlippage: 0.05}
}

// Check valida execPrice contra los límites configurados y contra el precio
// del trade original. Devuelve el slippage direccional y, si el trade no
// pasa, el motivo del rechazo.
func (g Guard) Check(trade domain.Trade, execPrice float64) (slippage float64, reason domain.SkipReason, ok bool) {
	if execPrice <= 0 {
		return 0, domain.SkipNoPrice, false
	}
	if execPrice < g.MinPrice || execPrice > g.MaxPrice {
		return 0, domain.SkipPriceRange, false
	}

	slippage = domain.Slippage(trade.Price, execPrice, trade.Side)
	if math.Abs(slippage) > g.MaxSlippage {
		return slippage, domain.SkipSlippage, false
	}
	return slippage, "", true
}
