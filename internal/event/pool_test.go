package event

import (
	"testing"
)

func TestEventPool(t *testing.T) {
	// Acquire and use
	ev := AcquirePriceUpdateEvent()
	ev.Symbol = "AAPL"
	ev.PriceMicros = 150000000

	if ev.Symbol != "AAPL" {
		t.Error("Symbol not set")
	}

	// Release
	ReleasePriceUpdateEvent(ev)

	// Acquire again - should be reset
	ev2 := AcquirePriceUpdateEvent()
	if ev2.Symbol != "" {
		t.Error("Event should be reset after release")
	}
	ReleasePriceUpdateEvent(ev2)
}

func TestWarmup(t *testing.T) {
	// Must not panic and must leave the pool usable.
	Warmup()
	ev := AcquirePriceUpdateEvent()
	if ev.Symbol != "" || ev.Seq != 0 {
		t.Error("Warmup left a dirty event in the pool")
	}
	ReleasePriceUpdateEvent(ev)
}

// BenchmarkWithoutPool measures allocation without pool
func BenchmarkWithoutPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := &PriceUpdateEvent{
			Symbol:      "AAPL",
			PriceMicros: 150000000,
		}
		_ = ev
	}
}

// BenchmarkWithPool measures allocation with pool
func BenchmarkWithPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := AcquirePriceUpdateEvent()
		ev.Symbol = "AAPL"
		ev.PriceMicros = 150000000
		ReleasePriceUpdateEvent(ev)
	}
}
