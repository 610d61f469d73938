package book

import (
	"errors"
	"testing"

	"stock_go/internal/domain"
	"stock_go/internal/event"
	"stock_go/pkg/quant"
)

func price(units int64) quant.PriceMicros {
	return quant.PriceMicros(units * quant.PriceScale)
}

func submit(t *testing.T, b *Book, side domain.Side, sym string, p, qty int64) uint64 {
	t.Helper()
	seq, err := b.Submit(domain.Order{
		Symbol:      sym,
		Side:        side,
		PriceMicros: price(p),
		Qty:         quant.Qty(qty),
	})
	if err != nil {
		t.Fatalf("Submit(%s %s %d@%d) failed: %v", side, sym, qty, p, err)
	}
	return seq
}

func TestSubmit_InvalidOrders(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	tests := []struct {
		name  string
		order domain.Order
	}{
		{"zero price", domain.Order{Symbol: "AAPL", Side: domain.SideBuy, PriceMicros: 0, Qty: 1}},
		{"negative price", domain.Order{Symbol: "AAPL", Side: domain.SideBuy, PriceMicros: -1, Qty: 1}},
		{"zero qty", domain.Order{Symbol: "AAPL", Side: domain.SideSell, PriceMicros: price(10), Qty: 0}},
		{"negative qty", domain.Order{Symbol: "AAPL", Side: domain.SideSell, PriceMicros: price(10), Qty: -4}},
		{"no symbol", domain.Order{Side: domain.SideBuy, PriceMicros: price(10), Qty: 1}},
		{"bad side", domain.Order{Symbol: "AAPL", Side: "HOLD", PriceMicros: price(10), Qty: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Submit(tt.order); !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}

	// Failed submissions must leave the book untouched.
	bids, asks := b.Depth("AAPL")
	if bids != 0 || asks != 0 {
		t.Errorf("book not empty after rejected submits: %d bids, %d asks", bids, asks)
	}
}

// Scenario from the matching contract: buy 10@155 vs sell 4@150 produces
// one trade of 4 at the resting sell's price; the buy stays resident with
// 6 remaining, the sell side empties.
func TestMatch_PartialFillAtSellPrice(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	buySeq := submit(t, b, domain.SideBuy, "AAPL", 155, 10)
	sellSeq := submit(t, b, domain.SideSell, "AAPL", 150, 4)

	trades := b.Match()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Symbol != "AAPL" || tr.Qty != 4 || tr.PriceMicros != price(150) {
		t.Errorf("trade = %+v; want AAPL 4@150", tr)
	}
	if tr.BuySeq != buySeq || tr.SellSeq != sellSeq {
		t.Errorf("trade seqs = (%d,%d); want (%d,%d)", tr.BuySeq, tr.SellSeq, buySeq, sellSeq)
	}

	bids, asks := b.Depth("AAPL")
	if bids != 1 || asks != 0 {
		t.Errorf("depth = (%d,%d); want (1,0)", bids, asks)
	}
	bid, vol, ok := b.BestBid("AAPL")
	if !ok || bid != price(155) || vol != 6 {
		t.Errorf("best bid = %d vol %d; want 155 vol 6", bid, vol)
	}
}

func TestMatch_NoCrossNoTrade(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	submit(t, b, domain.SideBuy, "AAPL", 149, 10)
	submit(t, b, domain.SideSell, "AAPL", 150, 10)

	if trades := b.Match(); len(trades) != 0 {
		t.Fatalf("expected no trades with open spread, got %d", len(trades))
	}
	bids, asks := b.Depth("AAPL")
	if bids != 1 || asks != 1 {
		t.Errorf("orders must stay resident; depth = (%d,%d)", bids, asks)
	}
}

// Two buys at the same price must fill in arrival order.
func TestMatch_FIFOTieBreak(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	first := submit(t, b, domain.SideBuy, "AAPL", 150, 5)
	second := submit(t, b, domain.SideBuy, "AAPL", 150, 5)
	submit(t, b, domain.SideSell, "AAPL", 150, 5)

	trades := b.Match()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].BuySeq != first {
		t.Errorf("matched buy seq %d; want first arrival %d", trades[0].BuySeq, first)
	}

	// The later arrival is still resident.
	submit(t, b, domain.SideSell, "AAPL", 150, 5)
	trades = b.Match()
	if len(trades) != 1 || trades[0].BuySeq != second {
		t.Fatalf("second pass should match buy %d, got %+v", second, trades)
	}
}

// Higher bids trade before lower ones, lower asks before higher ones.
func TestMatch_PricePriority(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	submit(t, b, domain.SideBuy, "AAPL", 151, 1)
	aggressive := submit(t, b, domain.SideBuy, "AAPL", 153, 1)
	submit(t, b, domain.SideSell, "AAPL", 150, 1)

	trades := b.Match()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].BuySeq != aggressive {
		t.Errorf("matched buy seq %d; want highest bid %d", trades[0].BuySeq, aggressive)
	}
	if trades[0].PriceMicros != price(150) {
		t.Errorf("execution price %d; want resting sell's 150", trades[0].PriceMicros)
	}
}

// Matching must run to a fixed point and terminate within N+M trades.
func TestMatch_FixedPointTermination(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	const n = 8
	for i := 0; i < n; i++ {
		submit(t, b, domain.SideBuy, "AAPL", 160, 3)
		submit(t, b, domain.SideSell, "AAPL", 140, 2)
	}

	trades := b.Match()
	if len(trades) > 2*n {
		t.Fatalf("matching emitted %d trades; bound is %d", len(trades), 2*n)
	}

	// Fixed point: no matchable pair remains.
	bid, _, hasBid := b.BestBid("AAPL")
	ask, _, hasAsk := b.BestAsk("AAPL")
	if hasBid && hasAsk && bid >= ask {
		t.Errorf("book still matchable after Match: bid %d >= ask %d", bid, ask)
	}

	// Total traded volume is the smaller side's volume.
	var total quant.Qty
	for _, tr := range trades {
		total += tr.Qty
	}
	if total != 2*n {
		t.Errorf("total traded qty = %d; want %d", total, 2*n)
	}
}

// Orders for different symbols never cross.
func TestMatch_SymbolIsolation(t *testing.T) {
	var seq uint64
	b := New(nil, &seq)

	submit(t, b, domain.SideBuy, "AAPL", 200, 5)
	submit(t, b, domain.SideSell, "TSLA", 100, 5)

	if trades := b.Match(); len(trades) != 0 {
		t.Fatalf("cross-symbol match occurred: %+v", trades)
	}
}

type captureSink struct {
	events []event.Event
}

func (c *captureSink) Publish(ev event.Event) { c.events = append(c.events, ev) }

func TestMatch_PublishesTradeEvents(t *testing.T) {
	var seq uint64
	sink := &captureSink{}
	b := New(sink, &seq)

	submit(t, b, domain.SideBuy, "AAPL", 155, 10)
	submit(t, b, domain.SideSell, "AAPL", 150, 4)
	b.Match()

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(sink.events))
	}
	te, ok := sink.events[0].(*event.TradeEvent)
	if !ok {
		t.Fatalf("published event is %T; want *event.TradeEvent", sink.events[0])
	}
	if te.Trade.Qty != 4 || te.Trade.PriceMicros != price(150) {
		t.Errorf("published trade = %+v; want 4@150", te.Trade)
	}
	if te.Seq != 1 {
		t.Errorf("event seq = %d; want 1", te.Seq)
	}
}
