package book

import (
	"stock_go/internal/domain"
	"stock_go/pkg/quant"
)

// priceLevel is a FIFO queue of resting orders sharing one limit price.
// Arrival order within a level is insertion order; the tie-break at equal
// price is therefore structural, not an artifact of queue re-insertion.
type priceLevel struct {
	price  quant.PriceMicros
	orders []*domain.Order
}

func newPriceLevel(price quant.PriceMicros) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) addOrder(o *domain.Order) {
	l.orders = append(l.orders, o)
}

// front returns the earliest-arrived order at this level.
func (l *priceLevel) front() *domain.Order {
	return l.orders[0]
}

// popFront removes the earliest-arrived order.
func (l *priceLevel) popFront() {
	l.orders[0] = nil
	l.orders = l.orders[1:]
}

func (l *priceLevel) empty() bool {
	return len(l.orders) == 0
}

// volume is the total resident quantity at this level.
func (l *priceLevel) volume() quant.Qty {
	var v quant.Qty
	for _, o := range l.orders {
		v += o.Qty
	}
	return v
}

func lessByPrice(a, b *priceLevel) bool {
	return a.price < b.price
}
