package strategy

import (
	"stock_go/internal/domain"
	"stock_go/pkg/quant"
	"stock_go/pkg/safe"
)

// SMACrossStrategy emits limit orders when a short moving average crosses
// a long one. A golden cross buys, a dead cross sells, both priced at the
// observation that triggered the signal.
//
// Prices live in a fixed ring sized to the long window and both window
// sums are maintained incrementally, so a tick never allocates.
type SMACrossStrategy struct {
	symbol   string
	short    int
	long     int
	orderQty quant.Qty

	ring     []int64
	seen     int // total observations
	shortSum int64
	longSum  int64

	lastShort int64
	lastLong  int64
	primed    bool
}

// NewSMACrossStrategy builds a strategy for one symbol. Panics unless
// 0 < shortPeriod < longPeriod.
func NewSMACrossStrategy(symbol string, shortPeriod, longPeriod int, orderQty quant.Qty) *SMACrossStrategy {
	if shortPeriod <= 0 || shortPeriod >= longPeriod {
		panic("SMACrossStrategy: need 0 < shortPeriod < longPeriod")
	}
	return &SMACrossStrategy{
		symbol:   symbol,
		short:    shortPeriod,
		long:     longPeriod,
		orderQty: orderQty,
		ring:     make([]int64, longPeriod),
	}
}

// OnPriceUpdate folds one observation into both windows and returns any
// orders the resulting crossover produced. Updates for other symbols are
// ignored.
func (s *SMACrossStrategy) OnPriceUpdate(symbol string, price quant.PriceMicros) []domain.Order {
	if symbol != s.symbol {
		return nil
	}

	p := int64(price)

	// Evict the observation leaving each window. The slot holding the
	// value that falls out of the long window is exactly the slot this
	// observation overwrites.
	if s.seen >= s.long {
		s.longSum = safe.SafeSub(s.longSum, s.ring[s.seen%s.long])
	}
	if s.seen >= s.short {
		s.shortSum = safe.SafeSub(s.shortSum, s.ring[(s.seen-s.short)%s.long])
	}

	s.ring[s.seen%s.long] = p
	s.shortSum = safe.SafeAdd(s.shortSum, p)
	s.longSum = safe.SafeAdd(s.longSum, p)
	s.seen++

	if s.seen < s.long {
		return nil
	}

	curShort := safe.SafeDiv(s.shortSum, int64(s.short))
	curLong := safe.SafeDiv(s.longSum, int64(s.long))

	var orders []domain.Order
	if s.primed {
		if s.lastShort <= s.lastLong && curShort > curLong {
			orders = append(orders, domain.Order{
				Symbol:      s.symbol,
				Side:        domain.SideBuy,
				PriceMicros: price,
				Qty:         s.orderQty,
			})
		}
		if s.lastShort >= s.lastLong && curShort < curLong {
			orders = append(orders, domain.Order{
				Symbol:      s.symbol,
				Side:        domain.SideSell,
				PriceMicros: price,
				Qty:         s.orderQty,
			})
		}
	}

	s.lastShort = curShort
	s.lastLong = curLong
	s.primed = true

	return orders
}
