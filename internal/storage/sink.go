package storage

import (
	"context"
	"log/slog"

	"stock_go/internal/event"
)

// JournalSink adapts the journal to the event.Sink interface.
// Write failures are logged, not fatal: the journal is an observability
// sink, never the market's source of truth.
type JournalSink struct {
	journal *Journal
}

// NewJournalSink wraps a journal as an event sink.
func NewJournalSink(j *Journal) *JournalSink {
	return &JournalSink{journal: j}
}

func (s *JournalSink) Publish(ev event.Event) {
	if err := s.journal.SaveEvent(context.Background(), ev); err != nil {
		slog.Error("JOURNAL_WRITE_FAILED",
			slog.Uint64("seq", ev.GetSeq()), slog.Any("error", err))
	}
}
