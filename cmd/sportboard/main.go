// Package main is the entry point for the sportboard server. It loads
// configuration, connects to services, starts the dump fetchers and the live
// feed client, and serves the query API with graceful shutdown support.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sportboard/internal/cache"
	"sportboard/internal/config"
	"sportboard/internal/database"
	"sportboard/internal/fetch"
	"sportboard/internal/handlers"
	"sportboard/internal/live"
	"sportboard/internal/results"
	"sportboard/internal/router"
	"sportboard/internal/sport"
	"sportboard/internal/store"
	"sportboard/internal/timing"
)

func main() {
	// Structured logger — outputs text; debug level in development.
	level := slog.LevelInfo
	if os.Getenv("APP_ENV") != "production" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"languages", cfg.Languages,
		"timezone", cfg.TimeZone,
	)

	// Day boundaries are computed in the feed's local timezone.
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		slog.Error("failed to load timezone", "timezone", cfg.TimeZone, "error", err)
		os.Exit(1)
	}

	// Root context cancels every background worker on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The window engine publishes a fresh snapshot on a fixed tick so the
	// "today" and "next 24h" boundaries track real time.
	engine := timing.NewEngine(loc)
	go func() {
		ticker := time.NewTicker(cfg.WindowRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				ws := engine.Refresh(now)
				slog.Debug("windows refreshed", "generation", ws.Generation)
			}
		}
	}()

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	resultStore := store.NewResultStore(db)

	// Connect to Valkey. Snapshots let a restart serve data before the first
	// fetch completes; without Valkey the process still works, cold.
	var snaps *cache.SnapshotStore
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, dump snapshots disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		snaps = cache.NewSnapshotStore(valkeyClient, cache.DefaultSnapshotTTL)
	}

	mergePoints := idSet(cfg.MergePointIDs)
	ignored := idSet(cfg.IgnoredCategoryIDs)

	sportCtl := sport.New(engine, cfg.Languages, cfg.DefaultLanguage, mergePoints, ignored)
	resultsCtl := results.New(engine, mergePoints, resultStore)

	// The sport fetcher pulls every language's category dump plus the event
	// dump in one cycle, so a rebuild always sees a consistent pair.
	sportRequests := []fetch.Request{
		{Key: sport.DumpKeyEvents, URL: cfg.EventDumpURLFor(cfg.DefaultLanguage)},
	}
	for _, lang := range cfg.Languages {
		sportRequests = append(sportRequests, fetch.Request{
			Key: sport.DumpKeyCategories(lang),
			URL: cfg.CategoryAPIURLFor(lang),
		})
	}
	sportFetcher := fetch.New("sport", sportRequests, cfg.CacheLifetime, sportCtl.Rebuild, snaps)
	sportCtl.SetNudge(sportFetcher.Nudge)
	go sportFetcher.Run(ctx)

	resultsFetcher := fetch.New("results",
		[]fetch.Request{{Key: "results", URL: cfg.ResultAPIURL}},
		cfg.CacheLifetime,
		func(payload map[string]json.RawMessage) error {
			return resultsCtl.Rebuild(payload["results"])
		},
		snaps,
	)
	resultsCtl.SetNudge(resultsFetcher.Nudge)
	go resultsFetcher.Run(ctx)

	// The live feed patches both caches between bulk rebuilds.
	if cfg.SocketURL != "" {
		liveClient := live.NewClient(cfg.SocketURL, cfg.CategoryDataURL, sportCtl, resultsCtl)
		go liveClient.Run(ctx)
	} else {
		slog.Warn("socket url not configured, live updates disabled")
	}

	// Set up the Chi router with all middleware and routes.
	r := router.New(
		handlers.NewCategories(sportCtl, resultsCtl),
		handlers.NewResults(resultsCtl),
		handlers.NewSchedule(engine, sportCtl, resultsCtl),
	)

	// Create the HTTP server with sensible timeouts. Responses come straight
	// from memory; nothing here waits on upstream.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Stop the fetchers and the live client first.
	cancel()

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// idSet turns a configured id list into a lookup set.
func idSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
