package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"feedstash/app/api"
	"feedstash/app/cfg"
	"feedstash/app/database"
	"feedstash/app/feed"
	"feedstash/app/ingest"
	"feedstash/app/registry"
	"feedstash/app/scheduler"
)

func main() {
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// help was shown
		return
	}

	setupLogger(appCfg.Debug)
	slog.Info("Starting feedstash", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort,
		appCfg.DBUser, appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	sourceRepo := database.NewSourceRepository(db)
	itemRepo := database.NewItemRepository(db)
	reg := registry.New(sourceRepo, itemRepo)

	if appCfg.SourcesFile != "" {
		seeds, err := registry.LoadSeedFile(appCfg.SourcesFile)
		if err != nil {
			slog.Error("Failed to load sources file", "path", appCfg.SourcesFile, "error", err)
			os.Exit(1)
		}
		added := reg.ApplySeed(context.Background(), seeds)
		slog.Info("Seed sources applied", "file", appCfg.SourcesFile, "total", len(seeds), "added", added)
	}

	fetcher := feed.NewFetcher(time.Duration(appCfg.FetchTimeout)*time.Second,
		appCfg.FetchRPS, appCfg.FetchBurst, appCfg.UserAgent)
	parser := feed.NewParser()
	coordinator := ingest.NewCoordinator(itemRepo)
	processor := ingest.NewProcessor(fetcher, parser, coordinator)

	sched := scheduler.New(reg, processor, time.Duration(appCfg.PollInterval)*time.Second)
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(reg, sourceRepo, itemRepo, processor, sched, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// scheduler is stopped via defer; in-flight polls finish on their own
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
