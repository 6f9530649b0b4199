package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/abhich05/wikiquiz/internal/ai"
	"github.com/abhich05/wikiquiz/internal/api"
	"github.com/abhich05/wikiquiz/internal/config"
	"github.com/abhich05/wikiquiz/internal/discover"
	"github.com/abhich05/wikiquiz/internal/quiz"
	"github.com/abhich05/wikiquiz/internal/reliability"
	"github.com/abhich05/wikiquiz/internal/storage"
	"github.com/abhich05/wikiquiz/internal/wiki"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure data directory exists.
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(filepath.Join(*dataDir, "wikiquiz.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	store := storage.NewStore(db)

	// Create the AI provider.
	provider, err := ai.NewProvider(ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		slog.Error("failed to create AI provider", "error", err)
		os.Exit(1)
	}
	slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)

	// Assemble the quiz pipeline: fetcher, provider, and the two
	// reliability guards.
	fetcher := wiki.NewFetcher(cfg.Wikipedia.Timeout(), cfg.Wikipedia.UserAgent)

	r := cfg.Reliability
	svc := quiz.NewService(quiz.Options{
		Fetcher:  fetcher,
		Provider: provider,
		FetchPolicy: reliability.Policy{
			MaxAttempts:      r.FetchMaxAttempts,
			MinDelay:         time.Duration(r.FetchMinDelayS) * time.Second,
			MaxDelay:         time.Duration(r.FetchMaxDelayS) * time.Second,
			FailureThreshold: r.FetchFailureThreshold,
			Cooldown:         time.Duration(r.FetchCooldownS) * time.Second,
		},
		GenPolicy: reliability.Policy{
			MaxAttempts:      r.GenMaxAttempts,
			MinDelay:         time.Duration(r.GenMinDelayS) * time.Second,
			MaxDelay:         time.Duration(r.GenMaxDelayS) * time.Second,
			FailureThreshold: r.GenFailureThreshold,
			Cooldown:         time.Duration(r.GenCooldownS) * time.Second,
		},
		ExtractOpts: wiki.ExtractOptions{
			MinContentChars: cfg.Wikipedia.MinContentChars,
			MaxLinksScanned: cfg.Wikipedia.MaxLinksScanned,
			MaxEntities:     cfg.Wikipedia.MaxEntities,
		},
		GenParams: ai.GenerationParams{
			Temperature:     cfg.AI.Temperature,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
		},
		MaxContentChars: cfg.Wikipedia.MaxContentChars,
	})

	disc := discover.NewDiscoverer(cfg.Wikipedia.Timeout(), cfg.Wikipedia.UserAgent)

	router := api.NewRouter(store, svc, disc, cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
