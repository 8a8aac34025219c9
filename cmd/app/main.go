package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"platwatch/internal/app"
	"platwatch/internal/domain"
	"platwatch/internal/infra"
	"platwatch/internal/service"
	"platwatch/internal/sink"

	"github.com/joho/godotenv"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	// Secrets may live in a local .env file
	_ = godotenv.Load()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Warm-up: catalog, watch-list validation, optional statistics.
	// Operator errors (unknown item, bad config) end the process here.
	if err := bootstrap.Warm(ctx); err != nil {
		slog.Error("❌ Warm-up failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Background thumbnail sync
	go bootstrap.SyncThumbs(ctx)

	// 6. Alert sinks
	cfg := bootstrap.Config
	sinks := []domain.AlertSink{sink.NewConsoleSink()}

	if cfg.Sinks.Pushover.Token != "" && cfg.Sinks.Pushover.User != "" {
		sinks = append(sinks, sink.NewPushoverSink(cfg.Sinks.Pushover.Token, cfg.Sinks.Pushover.User))
		slog.Info("✅ Pushover sink enabled")
	}

	if cfg.Sinks.WebSocket.Enabled {
		hub := sink.NewWSHub()
		go hub.Run(ctx)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		go func() {
			slog.Info("✅ Websocket sink listening", slog.String("addr", cfg.Sinks.WebSocket.Listen))
			if err := http.ListenAndServe(cfg.Sinks.WebSocket.Listen, mux); err != nil {
				slog.Error("Websocket server failed", slog.Any("error", err))
			}
		}()
		sinks = append(sinks, hub)
	}

	// 7. Steady-state watch loop
	watcher := service.NewWatcher(
		bootstrap.Items,
		bootstrap.Client,
		bootstrap.Catalog,
		service.NewLedger(),
		sinks,
		infra.GlobalMetrics,
		service.WatcherOptions{
			Interval: time.Duration(cfg.Watch.PollIntervalSec) * time.Second,
			Workers:  cfg.Watch.Workers,
		},
	)
	go watcher.Run(ctx)

	slog.InfoContext(ctx, "✨ Platwatch fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	snap := infra.GlobalMetrics.Snapshot()
	slog.Info("👋 Shutting down gracefully...",
		slog.Uint64("cycles", snap.CyclesTotal),
		slog.Uint64("polls", snap.PollsTotal),
		slog.Uint64("alerts", snap.AlertsEmitted),
	)
}
