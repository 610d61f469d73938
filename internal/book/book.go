package book

import (
	"errors"
	"sync"
	"time"

	"github.com/google/btree"

	"stock_go/internal/domain"
	"stock_go/internal/event"
	"stock_go/pkg/quant"
)

// ErrInvalidOrder signals a submission with a non-positive price or
// quantity, or a missing symbol. The book is left untouched.
var ErrInvalidOrder = errors.New("invalid order")

const levelTreeDegree = 16

// sideBook holds one symbol's resting orders: a btree of price levels per
// side. Best bid is the buy tree's max, best ask the sell tree's min.
type sideBook struct {
	buys  *btree.BTreeG[*priceLevel]
	sells *btree.BTreeG[*priceLevel]
}

func newSideBook() *sideBook {
	return &sideBook{
		buys:  btree.NewG(levelTreeDegree, lessByPrice),
		sells: btree.NewG(levelTreeDegree, lessByPrice),
	}
}

// Book is the limit order book for the whole market, keyed by symbol.
// Orders only ever match within their own symbol.
type Book struct {
	mu      sync.Mutex
	symbols map[string]*sideBook
	arrival uint64

	sink   event.Sink // trade observability sink, may be nil
	seqPtr *uint64    // shared event sequence counter
}

// New creates an empty book. Trades found by Match are published to sink
// with sequence numbers drawn from seqPtr.
func New(sink event.Sink, seqPtr *uint64) *Book {
	return &Book{
		symbols: make(map[string]*sideBook),
		sink:    sink,
		seqPtr:  seqPtr,
	}
}

// Submit rests a limit order on its side. The only validation is positive
// price and quantity; no matching is attempted here, the simulator drives
// matching on its tick. Returns the assigned arrival sequence.
func (b *Book) Submit(o domain.Order) (uint64, error) {
	if o.Symbol == "" || o.PriceMicros <= 0 || o.Qty <= 0 {
		return 0, ErrInvalidOrder
	}
	if o.Side != domain.SideBuy && o.Side != domain.SideSell {
		return 0, ErrInvalidOrder
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o.Seq = quant.NextSeq(&b.arrival)
	o.Status = "NEW"
	o.CreatedUnixM = time.Now().UnixMicro()

	sb, ok := b.symbols[o.Symbol]
	if !ok {
		sb = newSideBook()
		b.symbols[o.Symbol] = sb
	}

	tree := sb.buys
	if o.Side == domain.SideSell {
		tree = sb.sells
	}

	level, ok := tree.Get(&priceLevel{price: o.PriceMicros})
	if !ok {
		level = newPriceLevel(o.PriceMicros)
		tree.ReplaceOrInsert(level)
	}
	resting := o
	level.addOrder(&resting)

	return resting.Seq, nil
}

// Match runs the fixed-point matching pass over every symbol: while the
// best bid is at or above the best ask, trade at the resting sell's price
// for min(buy qty, sell qty). Each iteration removes at least one order or
// empties it, so the loop is bounded by resident order count.
//
// The whole pass holds the book mutex; a concurrent Submit can never
// observe a half-applied fill. Trades are published only after the lock is
// released.
func (b *Book) Match() []domain.Trade {
	b.mu.Lock()
	var trades []domain.Trade
	now := time.Now().UnixMicro()

	for symbol, sb := range b.symbols {
		trades = b.matchSymbol(symbol, sb, trades, now)
	}
	b.mu.Unlock()

	if b.sink != nil {
		for _, tr := range trades {
			seq := uint64(0)
			if b.seqPtr != nil {
				seq = quant.NextSeq(b.seqPtr)
			}
			b.sink.Publish(&event.TradeEvent{
				BaseEvent: event.BaseEvent{Seq: seq, Ts: quant.TimeStamp(tr.TsUnixM)},
				Trade:     tr,
			})
		}
	}
	return trades
}

func (b *Book) matchSymbol(symbol string, sb *sideBook, trades []domain.Trade, now int64) []domain.Trade {
	for {
		bestBuyLevel, ok := sb.buys.Max()
		if !ok {
			return trades
		}
		bestSellLevel, ok := sb.sells.Min()
		if !ok {
			return trades
		}

		buy := bestBuyLevel.front()
		sell := bestSellLevel.front()

		// Terminal condition: the spread is open.
		if buy.PriceMicros < sell.PriceMicros {
			return trades
		}

		qty := buy.Qty
		if sell.Qty < qty {
			qty = sell.Qty
		}
		buy.Qty -= qty
		sell.Qty -= qty

		// Execution at the resting sell's quote.
		trades = append(trades, domain.Trade{
			Symbol:      symbol,
			Qty:         qty,
			PriceMicros: sell.PriceMicros,
			BuySeq:      buy.Seq,
			SellSeq:     sell.Seq,
			TsUnixM:     now,
		})

		b.settleResting(sb.buys, bestBuyLevel, buy)
		b.settleResting(sb.sells, bestSellLevel, sell)
	}
}

// settleResting removes a filled order from its level, or marks it
// partially filled; empty levels leave the tree.
func (b *Book) settleResting(tree *btree.BTreeG[*priceLevel], level *priceLevel, o *domain.Order) {
	if o.Qty == 0 {
		o.Status = "FILLED"
		level.popFront()
		if level.empty() {
			tree.Delete(level)
		}
		return
	}
	o.Status = "PARTIALLY_FILLED"
}

// Depth reports resident order counts for a symbol (bids, asks).
func (b *Book) Depth(symbol string) (bids, asks int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sb, ok := b.symbols[symbol]
	if !ok {
		return 0, 0
	}
	sb.buys.Ascend(func(l *priceLevel) bool {
		bids += len(l.orders)
		return true
	})
	sb.sells.Ascend(func(l *priceLevel) bool {
		asks += len(l.orders)
		return true
	})
	return bids, asks
}

// BestBid returns the highest resting buy price and its volume.
func (b *Book) BestBid(symbol string) (quant.PriceMicros, quant.Qty, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sb, ok := b.symbols[symbol]
	if !ok {
		return 0, 0, false
	}
	level, ok := sb.buys.Max()
	if !ok {
		return 0, 0, false
	}
	return level.price, level.volume(), true
}

// BestAsk returns the lowest resting sell price and its volume.
func (b *Book) BestAsk(symbol string) (quant.PriceMicros, quant.Qty, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sb, ok := b.symbols[symbol]
	if !ok {
		return 0, 0, false
	}
	level, ok := sb.sells.Min()
	if !ok {
		return 0, 0, false
	}
	return level.price, level.volume(), true
}
