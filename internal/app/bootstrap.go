package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"stock_go/internal/account"
	"stock_go/internal/book"
	"stock_go/internal/event"
	"stock_go/internal/feed"
	"stock_go/internal/infra"
	"stock_go/internal/ledger"
	"stock_go/internal/news"
	"stock_go/internal/sim"
	"stock_go/internal/storage"
	"stock_go/internal/strategy"
	"stock_go/pkg/quant"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config    *infra.Config
	Journal   *storage.Journal
	Snapshots *storage.SnapshotManager

	Ledger   *ledger.Ledger
	Book     *book.Book
	Accounts *account.Manager
	News     *news.Feed
	Feed     *feed.Server
	Halt     *infra.HaltBreaker
	Sim      *sim.Simulator
	Limiter  *infra.RateLimiter

	// Seq is the global event sequence counter. Every published event
	// draws from it via quant.NextSeq.
	Seq uint64
}

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, market).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping StockGo...")

	// 0. Runtime Warmup (GC Optimization)
	event.Warmup()
	slog.Info("🔥 Event pool warmed up")

	// 1. Load Config (Dynamic Path Resolution)
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))

	// 3. Journal (Single-Writer WAL DB) under the workspace dir.
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	b.Snapshots = storage.NewSnapshotManager(filepath.Join(dataDir, "snapshots"))

	sinks := event.Sinks{event.LogSink{}}
	if cfg.Journal.Enabled {
		dbPath := filepath.Join(dataDir, "events.db")
		journal, err := storage.NewJournal(dbPath)
		if err != nil {
			return err
		}
		b.Journal = journal
		sinks = append(sinks, storage.NewJournalSink(journal))
		slog.Info("✅ Journal initialized (WAL-mode)", "path", dbPath)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := journal.UpsertMetadata(ctx, "app:version", cfg.App.Version, time.Now().UnixMicro()); err != nil {
			slog.Warn("JOURNAL_STAMP_FAILED", slog.Any("error", err))
		}
	}

	// 4. Feed server (websocket broadcast). Started by the caller.
	if cfg.Feed.Enabled {
		b.Feed = feed.NewServer()
		sinks = append(sinks, b.Feed)
	}

	// 5. Seed the market from config.
	b.Ledger = ledger.New()
	for _, inst := range cfg.Market.Instruments {
		b.Ledger.Add(inst.Symbol, quant.ToPriceMicrosStr(inst.StartPrice))
	}
	slog.Info("✅ Market seeded", slog.Int("instruments", len(cfg.Market.Instruments)))

	b.News = news.NewFeed(
		"Apple announces new iPhone.",
		"Tesla achieves record sales.",
		"Google acquires AI startup.",
		"Microsoft launches new Surface product.",
	)

	// 6. Trading core: book, accounts, order throttle.
	b.Book = book.New(sinks, &b.Seq)
	b.Accounts = account.NewManager(b.Ledger, cfg.InitialBalanceMicros())
	b.Limiter = infra.NewRateLimiter(cfg.Account.OrderBurst, cfg.Account.OrdersPerSec)

	// 7. Optional halt breaker and auto-trader.
	if cfg.Market.Halt.Enabled {
		b.Halt = infra.NewHaltBreaker(infra.HaltConfig{
			Name:        "market",
			ShockStreak: cfg.Market.Halt.ShockStreak,
			ProbeTicks:  cfg.Market.Halt.ProbeTicks,
			Cooldown:    time.Duration(cfg.Market.Halt.CooldownSec) * time.Second,
		})
	}
	var strat strategy.Strategy
	if cfg.Strategy.Enabled {
		strat = strategy.NewSMACrossStrategy(cfg.Strategy.Symbol,
			cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod, quant.Qty(cfg.Strategy.OrderQty))
		slog.Info("✅ SMA cross strategy armed", slog.String("symbol", cfg.Strategy.Symbol))
	}

	// 8. The simulator: the market's only autonomous actor.
	b.Sim = sim.New(sim.Config{
		Interval: cfg.TickInterval(),
		MaxMove:  cfg.PerturbationMicros(),
		MoveTrip: quant.ToPriceMicrosStr(cfg.Market.Halt.MoveTrip),
		Seed:     cfg.Market.Seed,
	}, b.Ledger, b.Book, b.Halt, strat, sinks, &b.Seq)

	return nil
}

// Shutdown snapshots the market and releases the journal.
func (b *Bootstrap) Shutdown() {
	if b.Snapshots != nil && b.Ledger != nil {
		snap := storage.CreateSnapshot(atomic.LoadUint64(&b.Seq), b.Ledger.Quotes())
		if err := b.Snapshots.Save(snap); err != nil {
			slog.Warn("SNAPSHOT_SAVE_FAILED", slog.Any("error", err))
		} else if err := b.Snapshots.Cleanup(5); err != nil {
			slog.Warn("SNAPSHOT_CLEANUP_FAILED", slog.Any("error", err))
		}
	}
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Warn("JOURNAL_CLOSE_FAILED", slog.Any("error", err))
		}
	}
	slog.Info("👋 Shutdown complete")
}
