package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/admin"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/api"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/auth"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/config"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/database"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/dispatch"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/recorder"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/server"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/stats"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/alphadash.local.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Optional .env for local development; config ${VAR} expansion reads
	// from the process environment.
	godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting alphadash",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"admin_api", cfg.AdminAPI.BaseURL,
		"tokens", len(cfg.Tokens),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client := api.NewClient(
		cfg.AdminAPI.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.AdminAPI.Timeout),
		api.WithRetries(cfg.AdminAPI.MaxRetries, time.Second),
	)

	tokens := resolveTokens(ctx, client, cfg, logger)
	if len(tokens) == 0 {
		logger.Error("no tokens to poll")
		os.Exit(1)
	}
	logger.Info("tokens resolved", "count", len(tokens))

	// Fan out feed updates to the consumers.
	dispatcher := dispatch.New(dispatch.DefaultConfig(), logger)
	statsInput := dispatcher.Subscribe()
	hubInput := dispatcher.Subscribe()

	var (
		rec     *recorder.Recorder
		recPool interface{ Close() }
	)
	if cfg.Recorder.Enabled {
		pool, err := database.Connect(ctx, cfg.Recorder.Postgres)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		recPool = pool
		rec = recorder.New(cfg.Recorder, dispatcher.Subscribe(), pool, logger)
		logger.Info("tick archive enabled",
			"host", cfg.Recorder.Postgres.Host,
			"database", cfg.Recorder.Postgres.Name,
		)
	}

	if err := dispatcher.Start(ctx); err != nil {
		logger.Error("failed to start dispatcher", "error", err)
		os.Exit(1)
	}

	aggregator := stats.NewAggregator(statsInput, logger)
	if err := aggregator.Start(ctx); err != nil {
		logger.Error("failed to start aggregator", "error", err)
		os.Exit(1)
	}

	hub := server.NewHub(hubInput, logger)
	if err := hub.Start(ctx); err != nil {
		logger.Error("failed to start websocket hub", "error", err)
		os.Exit(1)
	}

	if rec != nil {
		if err := rec.Start(ctx); err != nil {
			logger.Error("failed to start recorder", "error", err)
			os.Exit(1)
		}
	}

	var store auth.StateStore
	if cfg.Auth.StateFile != "" {
		fs, err := auth.NewFileStore(cfg.Auth.StateFile, 0)
		if err != nil {
			logger.Error("failed to open auth state file", "error", err)
			os.Exit(1)
		}
		store = fs
	}
	gate := auth.NewGate(cfg.Auth.Secret, store, logger)
	if err := gate.Start(ctx); err != nil {
		logger.Error("failed to start auth gate", "error", err)
		os.Exit(1)
	}

	adminSvc := admin.NewService(client, logger)
	if err := adminSvc.Refresh(ctx); err != nil {
		// The dashboard still runs on the config fallback.
		logger.Warn("initial admin refresh failed", "error", err)
	}

	feedCfg := feed.Config{
		PollInterval: cfg.Feed.PollInterval,
		BackoffBase:  cfg.Feed.BackoffBase,
		BackoffMax:   cfg.Feed.BackoffMax,
		Timeout:      cfg.Feed.Timeout,
		WindowSize:   cfg.Feed.WindowSize,
		SpreadSample: cfg.Feed.SpreadSample,
	}
	supervisor := feed.NewSupervisor(feedCfg, cfg.Feed.StaggerStep, tokens, client, dispatcher, logger, feed.RealClock())
	if err := supervisor.Start(ctx); err != nil {
		logger.Error("failed to start feed supervisor", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := server.New(addr, supervisor, aggregator, client, adminSvc, gate, hub, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start http server", "error", err)
		os.Exit(1)
	}

	logger.Info("alphadash running",
		"instance_id", cfg.Instance.ID,
		"addr", addr,
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop producers before consumers so buffered updates drain.
	srv.Stop(shutdownCtx)
	supervisor.Stop(shutdownCtx)
	dispatcher.Stop(shutdownCtx)
	hub.Stop(shutdownCtx)
	aggregator.Stop(shutdownCtx)
	if rec != nil {
		rec.Stop(shutdownCtx)
	}
	gate.Stop(shutdownCtx)
	if store != nil {
		store.Close()
	}
	if recPool != nil {
		recPool.Close()
	}

	logger.Info("shutdown complete")
}

// resolveTokens prefers the admin backend's token list and falls back to the
// static config when the backend is unreachable.
func resolveTokens(ctx context.Context, client *api.Client, cfg *config.Config, logger *slog.Logger) []model.Token {
	fetched, err := client.GetTokens(ctx)
	if err == nil && len(fetched) > 0 {
		for i := range fetched {
			if fetched[i].Multiplier == 0 {
				fetched[i].Multiplier = 1
			}
		}
		return fetched
	}
	if err != nil {
		logger.Warn("failed to fetch tokens from admin backend, using config fallback", "error", err)
	}

	tokens := make([]model.Token, 0, len(cfg.Tokens))
	for _, tc := range cfg.Tokens {
		tokens = append(tokens, model.Token{
			Name:         tc.Name,
			APIURL:       tc.APIURL,
			StaggerDelay: tc.StaggerDelay.Milliseconds(),
			Multiplier:   tc.Multiplier,
		})
	}
	return tokens
}
