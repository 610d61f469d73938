package strategy

import (
	"testing"

	"stock_go/internal/domain"
	"stock_go/pkg/quant"
)

func feed(s *SMACrossStrategy, prices ...int64) []domain.Order {
	var last []domain.Order
	for _, p := range prices {
		last = s.OnPriceUpdate("AAPL", quant.PriceMicros(p*quant.PriceScale))
	}
	return last
}

func TestSMACross_NoSignalBeforeWarmup(t *testing.T) {
	s := NewSMACrossStrategy("AAPL", 2, 3, 10)

	if orders := feed(s, 10, 10); orders != nil {
		t.Errorf("expected no orders before long period fills, got %v", orders)
	}
}

func TestSMACross_GoldenCrossBuys(t *testing.T) {
	s := NewSMACrossStrategy("AAPL", 2, 3, 10)

	// Flat warmup, then a spike: short SMA crosses above long SMA.
	feed(s, 10, 10, 10)
	orders := feed(s, 16)

	if len(orders) != 1 {
		t.Fatalf("expected 1 order on golden cross, got %d", len(orders))
	}
	o := orders[0]
	if o.Side != domain.SideBuy {
		t.Errorf("side = %s; want BUY", o.Side)
	}
	if o.Symbol != "AAPL" || o.Qty != 10 {
		t.Errorf("order = %+v; want AAPL qty 10", o)
	}
	if o.PriceMicros != 16*quant.PriceScale {
		t.Errorf("limit price = %d; want current price", o.PriceMicros)
	}
}

func TestSMACross_DeadCrossSells(t *testing.T) {
	s := NewSMACrossStrategy("AAPL", 2, 3, 10)

	// Spike up then collapse: short SMA crosses below long SMA.
	feed(s, 10, 10, 10, 16, 2)
	orders := feed(s, 2)

	if len(orders) != 1 {
		t.Fatalf("expected 1 order on dead cross, got %d", len(orders))
	}
	if orders[0].Side != domain.SideSell {
		t.Errorf("side = %s; want SELL", orders[0].Side)
	}
}

func TestSMACross_IgnoresOtherSymbols(t *testing.T) {
	s := NewSMACrossStrategy("AAPL", 2, 3, 10)

	if orders := s.OnPriceUpdate("TSLA", 100*quant.PriceScale); orders != nil {
		t.Errorf("expected no orders for foreign symbol, got %v", orders)
	}
}

func TestNewSMACross_PanicsOnBadPeriods(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for short >= long")
		}
	}()
	NewSMACrossStrategy("AAPL", 3, 3, 10)
}
