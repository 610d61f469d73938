package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stock_go/internal/app"
	"stock_go/internal/cli"
	"stock_go/internal/infra"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 0. Local overrides from .env, if present.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env overrides")
	}

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	infra.PrintBanner(bootstrap.Config)

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Feed server (websocket broadcast)
	if bootstrap.Feed != nil {
		bootstrap.Feed.Start(ctx, bootstrap.Config.Feed.ListenAddr)
	}

	// 5. Market simulator (The Tick Loop)
	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		bootstrap.Sim.Run(ctx)
	}()
	slog.InfoContext(ctx, "✅ Market simulator started", slog.Duration("tick", bootstrap.Config.TickInterval()))

	// 6. Interactive console on stdin.
	console := cli.New(os.Stdin, os.Stdout,
		bootstrap.Accounts, bootstrap.Ledger, bootstrap.Book,
		bootstrap.News, bootstrap.Journal, bootstrap.Limiter)

	consoleDone := make(chan error, 1)
	go func() { consoleDone <- console.Run(ctx) }()

	select {
	case <-ctx.Done():
		slog.Info("👋 Shutting down gracefully...")
	case err := <-consoleDone:
		if err != nil && !errors.Is(err, cli.ErrConsoleClosed) && !errors.Is(err, context.Canceled) {
			slog.Error("Console failed", slog.Any("error", err))
		}
		stop()
	}

	// Let the in-flight tick finish before snapshotting.
	<-simDone
	bootstrap.Shutdown()
}
