package strategy

import (
	"stock_go/internal/domain"
	"stock_go/pkg/quant"
)

// Strategy defines the interface for automated trading logic.
type Strategy interface {
	// OnPriceUpdate is called once per instrument per tick with the new
	// price. Returned limit orders are submitted to the book by the caller.
	OnPriceUpdate(symbol string, price quant.PriceMicros) []domain.Order
}
