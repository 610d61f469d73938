package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"stock_go/internal/ledger"
	"stock_go/internal/storage"
	"stock_go/pkg/quant"
)

// Replayer rebuilds a market from a journaled event log. Price updates
// are applied to a fresh ledger in sequence order, so indicators computed
// after a replay match what the live run would have reported.
type Replayer struct {
	journal *storage.Journal
	owned   bool
}

// Result summarizes one replay pass.
type Result struct {
	Events     int
	LastSeq    uint64
	FinalPrice map[string]quant.PriceMicros
}

// NewReplayer opens the journal at dbPath.
func NewReplayer(dbPath string) (*Replayer, error) {
	journal, err := storage.NewJournal(dbPath)
	if err != nil {
		return nil, err
	}
	return &Replayer{journal: journal, owned: true}, nil
}

// NewReplayerFromJournal wraps an already-open journal. The caller keeps
// ownership; Close is a no-op.
func NewReplayerFromJournal(j *storage.Journal) *Replayer {
	return &Replayer{journal: j}
}

// Run replays all price events at or after fromSeq into the ledger.
// The first event seen for a symbol seeds it; later events flow through
// the same clamp-and-append path the live market uses.
func (r *Replayer) Run(ctx context.Context, l *ledger.Ledger, fromSeq uint64) (*Result, error) {
	events, err := r.journal.LoadPriceEvents(ctx, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to load price events: %w", err)
	}

	res := &Result{FinalPrice: make(map[string]quant.PriceMicros)}
	seen := make(map[string]bool)
	for _, ev := range events {
		if !seen[ev.Symbol] {
			l.Add(ev.Symbol, ev.PriceMicros)
			seen[ev.Symbol] = true
		} else if _, err := l.UpdatePrice(ev.Symbol, ev.PriceMicros); err != nil {
			slog.Warn("REPLAY_UPDATE_FAILED",
				slog.String("symbol", ev.Symbol), slog.Any("error", err))
			continue
		}
		res.Events++
		res.LastSeq = ev.Seq
	}

	for _, q := range l.Quotes() {
		res.FinalPrice[q.Symbol] = q.PriceMicros
	}
	slog.Info("Replay complete",
		slog.Int("events", res.Events), slog.Uint64("last_seq", res.LastSeq))
	return res, nil
}

func (r *Replayer) Close() error {
	if !r.owned || r.journal == nil {
		return nil
	}
	return r.journal.Close()
}
