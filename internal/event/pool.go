package event

import "sync"

// priceUpdatePool recycles PriceUpdateEvent allocations.
// The simulator emits one per instrument per tick; pooling keeps the
// hotpath allocation-free.
var priceUpdatePool = sync.Pool{
	New: func() any {
		return &PriceUpdateEvent{}
	},
}

// AcquirePriceUpdateEvent returns a zeroed event from the pool.
func AcquirePriceUpdateEvent() *PriceUpdateEvent {
	return priceUpdatePool.Get().(*PriceUpdateEvent)
}

// ReleasePriceUpdateEvent resets and returns an event to the pool.
// The caller must not retain the event after release.
func ReleasePriceUpdateEvent(ev *PriceUpdateEvent) {
	*ev = PriceUpdateEvent{}
	priceUpdatePool.Put(ev)
}

// Warmup primes the pool so the first ticks do not allocate.
func Warmup() {
	events := make([]*PriceUpdateEvent, 32)
	for i := range events {
		events[i] = AcquirePriceUpdateEvent()
	}
	for _, ev := range events {
		ReleasePriceUpdateEvent(ev)
	}
}
