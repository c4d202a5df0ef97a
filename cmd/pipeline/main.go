package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sensorpipe/internal/config"
	"github.com/JonMunkholm/sensorpipe/internal/intake"
	"github.com/JonMunkholm/sensorpipe/internal/logging"
	"github.com/JonMunkholm/sensorpipe/internal/store"
	"github.com/JonMunkholm/sensorpipe/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	once := flag.Bool("once", false, "scan the incoming directory once and exit")
	flag.Parse()

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_dir", cfg.Intake.DataDir,
		"poll_interval", cfg.Intake.PollInterval(),
		"source", cfg.Pipeline.SourceName,
		"db_max_conns", cfg.Database.MaxConns,
	)

	// Parse and configure connection pool. An empty URL lets pgx fall back
	// to the libpq-compatible PG* environment variables.
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database")

	// Create the intake directory tree up front so the first scan never
	// fails on a fresh deployment.
	for _, dir := range []string{cfg.Intake.IncomingDir(), cfg.Intake.ProcessedDir(), cfg.Intake.QuarantineDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("failed to create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	st := store.New(pool)
	processor := intake.NewProcessor(st, cfg)
	watcher := intake.NewWatcher(processor, cfg.Intake.IncomingDir(), cfg.Intake.PollInterval())

	if *once {
		slog.Info("one-shot mode: scanning once")
		watcher.Scan(ctx)
		return
	}

	server := web.NewServer(st, cfg.Server)
	go func() {
		slog.Info("admin server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil {
			slog.Info("admin server stopped", "error", err)
		}
	}()

	// The poll loop blocks until the signal context is cancelled.
	watcher.Run(ctx)

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
