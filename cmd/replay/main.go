package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"stock_go/backtest"
	"stock_go/internal/infra"
	"stock_go/internal/ledger"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	defaultDB := filepath.Join(infra.GetWorkspaceDir(), "data", "events.db")
	dbPath := flag.String("db", defaultDB, "path to the event journal")
	fromSeq := flag.Uint64("from", 0, "replay events at or after this sequence")
	smaPeriod := flag.Int("sma", 0, "print an SMA of this period per instrument (0 = off)")
	flag.Parse()

	slog.Info("🚀 Replaying market history...", "db", *dbPath, "from", *fromSeq)

	r, err := backtest.NewReplayer(*dbPath)
	if err != nil {
		slog.Error("❌ Failed to open journal", "error", err)
		os.Exit(1)
	}
	defer r.Close()

	l := ledger.New()
	res, err := r.Run(context.Background(), l, *fromSeq)
	if err != nil {
		slog.Error("❌ Replay failed", "error", err)
		os.Exit(1)
	}

	symbols := make([]string, 0, len(res.FinalPrice))
	for s := range res.FinalPrice {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	fmt.Printf("\nReplayed %d events (last seq %d)\n", res.Events, res.LastSeq)
	for _, symbol := range symbols {
		line := fmt.Sprintf("%-6s $%s", symbol, res.FinalPrice[symbol])
		if *smaPeriod > 0 {
			if sma, ok, err := l.SMA(symbol, *smaPeriod); err == nil && ok {
				line += fmt.Sprintf("  SMA(%d) $%s", *smaPeriod, sma)
			} else {
				line += fmt.Sprintf("  SMA(%d) unavailable", *smaPeriod)
			}
		}
		fmt.Println(line)
	}
}
