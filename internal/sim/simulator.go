package sim

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"stock_go/internal/book"
	"stock_go/internal/event"
	"stock_go/internal/infra"
	"stock_go/internal/ledger"
	"stock_go/internal/strategy"
	"stock_go/pkg/quant"
)

// Config shapes the simulator's clock and random walk.
type Config struct {
	Interval time.Duration
	MaxMove  quant.PriceMicros // perturbation drawn uniformly from [-MaxMove, +MaxMove]
	MoveTrip quant.PriceMicros // per-tick move counted as a shock; 0 disables
	Seed     int64             // 0 = time-seeded
}

// Simulator drives time forward for the whole market: every tick it
// perturbs each instrument's price, feeds the strategy, and runs one
// matching pass. The system's only autonomous actor.
type Simulator struct {
	cfg    Config
	ledger *ledger.Ledger
	book   *book.Book

	halt  *infra.HaltBreaker // optional
	strat strategy.Strategy  // optional

	sink   event.Sink // optional
	seqPtr *uint64

	rng   *rand.Rand
	ticks uint64
}

// New creates a simulator. halt, strat and sink may be nil.
func New(cfg Config, l *ledger.Ledger, b *book.Book, halt *infra.HaltBreaker, strat strategy.Strategy, sink event.Sink, seqPtr *uint64) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg:    cfg,
		ledger: l,
		book:   b,
		halt:   halt,
		strat:  strat,
		sink:   sink,
		seqPtr: seqPtr,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Run ticks until the context is canceled. This MUST be run in a single
// goroutine; an in-progress tick always completes before Run returns.
func (s *Simulator) Run(ctx context.Context) {
	slog.Info("Market simulator started",
		slog.Duration("interval", s.cfg.Interval),
		slog.String("max_move", s.cfg.MaxMove.String()))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Market simulator stopping...", slog.Uint64("ticks", s.ticks))
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick perturbs every instrument once and runs a matching pass.
// Per-instrument failures are isolated: logged, never aborting the tick.
func (s *Simulator) Tick() {
	s.ticks++
	shock := false

	for _, symbol := range s.ledger.Symbols() {
		current, err := s.ledger.Price(symbol)
		if err != nil {
			slog.Error("TICK_INSTRUMENT_FAILED",
				slog.String("symbol", symbol), slog.Any("error", err))
			continue
		}

		delta := s.drawDelta()
		next, err := s.ledger.UpdatePrice(symbol, current+delta)
		if err != nil {
			slog.Error("TICK_INSTRUMENT_FAILED",
				slog.String("symbol", symbol), slog.Any("error", err))
			continue
		}

		move := next - current
		if move < 0 {
			move = -move
		}
		if s.cfg.MoveTrip > 0 && move >= s.cfg.MoveTrip {
			shock = true
		}

		s.publishPrice(symbol, next)
		s.runStrategy(symbol, next)
	}

	if s.halt != nil {
		before := s.halt.State()
		if shock {
			s.halt.RecordShock()
		} else {
			s.halt.RecordCalm()
		}
		allowed := s.halt.Allow()
		if after := s.halt.State(); after != before {
			s.publishHalt(after == infra.HaltOpen)
		}
		if !allowed {
			slog.Debug("MATCHING_SUSPENDED", slog.String("state", s.halt.State().String()))
			return
		}
	}

	s.book.Match()
}

func (s *Simulator) drawDelta() quant.PriceMicros {
	span := int64(s.cfg.MaxMove)
	return quant.PriceMicros(s.rng.Int63n(2*span+1) - span)
}

func (s *Simulator) publishPrice(symbol string, price quant.PriceMicros) {
	if s.sink == nil {
		return
	}
	ev := event.AcquirePriceUpdateEvent()
	ev.Seq = quant.NextSeq(s.seqPtr)
	ev.Ts = quant.TimeStamp(time.Now().UnixMicro())
	ev.Symbol = symbol
	ev.PriceMicros = price
	s.sink.Publish(ev)
	event.ReleasePriceUpdateEvent(ev)
}

func (s *Simulator) publishHalt(open bool) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(&event.HaltEvent{
		BaseEvent: event.BaseEvent{
			Seq: quant.NextSeq(s.seqPtr),
			Ts:  quant.TimeStamp(time.Now().UnixMicro()),
		},
		Open: open,
	})
}

func (s *Simulator) runStrategy(symbol string, price quant.PriceMicros) {
	if s.strat == nil {
		return
	}
	for _, order := range s.strat.OnPriceUpdate(symbol, price) {
		if _, err := s.book.Submit(order); err != nil {
			slog.Warn("STRATEGY_ORDER_REJECTED",
				slog.String("symbol", order.Symbol), slog.Any("error", err))
		}
	}
}
