package event

import "log/slog"

// Sink consumes market events. Implementations must not block the caller
// for long and must not retain the event after Publish returns: price
// events are pooled and recycled by the publisher.
type Sink interface {
	Publish(ev Event)
}

// Sinks fans one event out to every registered sink.
type Sinks []Sink

func (s Sinks) Publish(ev Event) {
	for _, sink := range s {
		sink.Publish(ev)
	}
}

// LogSink writes events to the structured logger. The default
// observability sink when no journal or feed is configured.
type LogSink struct{}

func (LogSink) Publish(ev Event) {
	switch e := ev.(type) {
	case *TradeEvent:
		slog.Info("TRADE_MATCHED",
			slog.String("symbol", e.Trade.Symbol),
			slog.String("qty", e.Trade.Qty.String()),
			slog.String("price", e.Trade.PriceMicros.String()))
	case *PriceUpdateEvent:
		slog.Debug("PRICE_UPDATE",
			slog.String("symbol", e.Symbol),
			slog.String("price", e.PriceMicros.String()))
	case *HaltEvent:
		slog.Warn("TRADING_HALT", slog.Bool("open", e.Open))
	default:
		slog.Debug("EVENT", slog.Any("type", ev.GetType()))
	}
}
