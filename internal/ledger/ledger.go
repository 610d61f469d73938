package ledger

import (
	"errors"
	"sort"
	"sync"
	"time"

	"stock_go/internal/domain"
	"stock_go/pkg/quant"
	"stock_go/pkg/safe"
)

// ErrInstrumentNotFound signals a query for a symbol the ledger does not hold.
var ErrInstrumentNotFound = errors.New("instrument not found")

// MinPriceMicros is the floor every proposed price is clamped to (1.00).
const MinPriceMicros = quant.PriceMicros(1 * quant.PriceScale)

// instrument owns one symbol's price state. The mutex serializes writers
// per instrument; readers may observe pre- or post-update state but never
// a torn price/history pair.
type instrument struct {
	mu          sync.RWMutex
	symbol      string
	price       quant.PriceMicros
	history     []quant.PriceMicros
	lastUpdateM quant.TimeStamp
}

// Ledger holds the authoritative price state for every instrument.
// The instrument map is populated at initialization and never mutated
// afterwards, so map reads need no lock of their own.
type Ledger struct {
	instruments map[string]*instrument
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{instruments: make(map[string]*instrument)}
}

// Add registers an instrument with its starting price. Init-time only;
// calling Add concurrently with reads is not supported.
func (l *Ledger) Add(symbol string, start quant.PriceMicros) {
	start = clamp(start)
	l.instruments[symbol] = &instrument{
		symbol:      symbol,
		price:       start,
		history:     []quant.PriceMicros{start},
		lastUpdateM: quant.TimeStamp(time.Now().UnixMicro()),
	}
}

// Symbols returns all registered symbols in lexical order.
func (l *Ledger) Symbols() []string {
	out := make([]string, 0, len(l.instruments))
	for s := range l.instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Price returns the current price for a symbol.
func (l *Ledger) Price(symbol string) (quant.PriceMicros, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return 0, ErrInstrumentNotFound
	}
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	return ins.price, nil
}

// Quote returns a point-in-time snapshot of one instrument.
func (l *Ledger) Quote(symbol string) (domain.Quote, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return domain.Quote{}, ErrInstrumentNotFound
	}
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	return domain.Quote{
		Symbol:          ins.symbol,
		PriceMicros:     ins.price,
		LastUpdateUnixM: ins.lastUpdateM,
	}, nil
}

// Quotes returns a snapshot of every instrument, ordered by symbol.
func (l *Ledger) Quotes() []domain.Quote {
	symbols := l.Symbols()
	out := make([]domain.Quote, 0, len(symbols))
	for _, s := range symbols {
		q, err := l.Quote(s)
		if err != nil {
			continue
		}
		out = append(out, q)
	}
	return out
}

// UpdatePrice sets the instrument's price to the proposed value clamped at
// the 1.00 floor and appends it to history. History grows by exactly one
// entry per call. Safe under concurrent invocation for different symbols;
// concurrent writers for the same symbol are serialized.
func (l *Ledger) UpdatePrice(symbol string, proposed quant.PriceMicros) (quant.PriceMicros, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return 0, ErrInstrumentNotFound
	}
	next := clamp(proposed)

	ins.mu.Lock()
	ins.price = next
	ins.history = append(ins.history, next)
	ins.lastUpdateM = quant.TimeStamp(time.Now().UnixMicro())
	ins.mu.Unlock()

	return next, nil
}

// HistoryLen returns the number of recorded prices for a symbol.
func (l *Ledger) HistoryLen(symbol string) (int, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return 0, ErrInstrumentNotFound
	}
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	return len(ins.history), nil
}

// History returns a copy of the recorded prices for a symbol.
func (l *Ledger) History(symbol string) ([]quant.PriceMicros, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return nil, ErrInstrumentNotFound
	}
	ins.mu.RLock()
	defer ins.mu.RUnlock()
	out := make([]quant.PriceMicros, len(ins.history))
	copy(out, ins.history)
	return out, nil
}

// SMA computes the simple moving average over the last period entries.
// The bool result is false when the indicator is unavailable: a
// non-positive period or a period exceeding recorded history.
func (l *Ledger) SMA(symbol string, period int) (quant.PriceMicros, bool, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return 0, false, ErrInstrumentNotFound
	}
	ins.mu.RLock()
	defer ins.mu.RUnlock()

	n := len(ins.history)
	if period <= 0 || period > n {
		return 0, false, nil
	}

	var sum int64
	for _, p := range ins.history[n-period:] {
		sum = safe.SafeAdd(sum, int64(p))
	}
	return quant.PriceMicros(safe.SafeDiv(sum, int64(period))), true, nil
}

// EMA computes the exponential moving average with smoothing factor
// k = 2/(period+1), seeded with the entry exactly period samples before
// the end. Integer form of ema = obs*k + ema*(1-k):
//
//	ema' = (2*obs + (period-1)*ema) / (period+1)
//
// Unavailable under the same conditions as SMA.
func (l *Ledger) EMA(symbol string, period int) (quant.PriceMicros, bool, error) {
	ins, ok := l.instruments[symbol]
	if !ok {
		return 0, false, ErrInstrumentNotFound
	}
	ins.mu.RLock()
	defer ins.mu.RUnlock()

	n := len(ins.history)
	if period <= 0 || period > n {
		return 0, false, nil
	}

	ema := int64(ins.history[n-period])
	for _, p := range ins.history[n-period+1:] {
		num := safe.SafeAdd(safe.SafeMul(2, int64(p)), safe.SafeMul(int64(period)-1, ema))
		ema = safe.SafeDiv(num, int64(period)+1)
	}
	return quant.PriceMicros(ema), true, nil
}

// TopMovers returns the highest- and lowest-priced instruments.
// ok is false on an empty ledger.
func (l *Ledger) TopMovers() (top, worst domain.Quote, ok bool) {
	for _, q := range l.Quotes() {
		if !ok {
			top, worst, ok = q, q, true
			continue
		}
		if q.PriceMicros > top.PriceMicros {
			top = q
		}
		if q.PriceMicros < worst.PriceMicros {
			worst = q
		}
	}
	return top, worst, ok
}

func clamp(p quant.PriceMicros) quant.PriceMicros {
	if p < MinPriceMicros {
		return MinPriceMicros
	}
	return p
}
