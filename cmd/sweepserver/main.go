package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvb0005/SweepTogether-sub000/internal/config"
	"github.com/mvb0005/SweepTogether-sub000/internal/db"
	"github.com/mvb0005/SweepTogether-sub000/internal/game"
	"github.com/mvb0005/SweepTogether-sub000/internal/gameserver"
	"github.com/mvb0005/SweepTogether-sub000/internal/leaderboard"
)

const ConfigPath = "config/sweepserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("SWEEP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("sweep server starting",
		"log_level", cfg.LogLevel,
		"bind", cfg.BindAddress,
		"port", cfg.Port,
		"chunk_size", cfg.Board.ChunkSize,
		"persistence", cfg.Database.Enabled)

	// Persistence is optional: without a database the server runs
	// memory-only and loses state on restart.
	var gateway game.Gateway
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		gateway = db.NewStore(database)
	}

	bus := game.NewBus()
	registry := game.NewRegistry(cfg.Board, cfg.Scoring, bus, gateway)
	registry.Start(ctx)

	board := leaderboard.New()
	bus.Attach(board)

	server := gameserver.NewServer(cfg, registry, board)
	bus.Attach(server)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting transport", "port", cfg.Port)
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("transport: %w", err)
		}
		return nil
	})

	if gateway != nil {
		interval := time.Duration(cfg.SnapshotIntervalSec) * time.Second
		g.Go(func() error {
			slog.Info("starting snapshot loop", "interval", interval)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					registry.PersistAll(gctx)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	// Final persistence pass after the listeners drained.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	registry.Shutdown(shutdownCtx)
	slog.Info("sweep server stopped")
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
