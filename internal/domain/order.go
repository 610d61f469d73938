package domain

import "stock_go/pkg/quant"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order represents a resting limit order.
// All monetary values are strictly int64 micros.
type Order struct {
	Symbol       string
	Side         Side
	PriceMicros  quant.PriceMicros // Limit price in Micros.
	Qty          quant.Qty         // Remaining quantity in shares. Mutated downward on partial fill.
	Seq          uint64            // Arrival sequence. FIFO tie-break at equal price.
	Status       string            // "NEW", "PARTIALLY_FILLED", "FILLED"
	CreatedUnixM int64             // Unix Microseconds
}

// IsOpen checks if the order is still resting on the book.
func (o *Order) IsOpen() bool {
	return o.Status == "NEW" || o.Status == "PARTIALLY_FILLED"
}
