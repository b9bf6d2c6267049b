package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stocklog/internal/api"
	"stocklog/internal/eod"
	"stocklog/internal/eod/eodobs"
	"stocklog/internal/interfaces"
	"stocklog/internal/logger"
	"stocklog/internal/store"
	"stocklog/internal/trace"

	"github.com/joho/godotenv"
)

const userAgent = "stocklog-cli/0.3.0"

// initializeSystem loads .env and initializes logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
}

// loadConfig reads the config file; the default path may be absent, in
// which case defaults plus DATA_FOLDER are used
func loadConfig(ctx context.Context, path string, explicit bool) (*store.Config, error) {
	if explicit {
		cfg, err := store.LoadConfig(path)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
			return nil, err
		}
		return cfg, nil
	}

	cfg, fromFile, err := store.LoadOrDefault(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	if !fromFile {
		logger.Debug(ctx, "No config file, using defaults", "path", path, "data_folder", cfg.DataFolder)
	}
	return cfg, nil
}

// initializeLocal builds the summarizer over the data folder, wrapped with
// observability
func initializeLocal(ctx context.Context, cfg *store.Config) (*eod.Summarizer, interfaces.StockLogSummarizer, error) {
	base, err := eod.NewSummarizer(cfg.DataFolder,
		eod.WithMetadataFile(cfg.MetadataFile),
		eod.WithTimeLayouts(cfg.TimeLayouts...),
	)
	if err != nil {
		logger.ErrorWithErr(ctx, "Data folder unavailable", err, "data_folder", cfg.DataFolder)
		return nil, nil, err
	}
	logger.Debug(ctx, "Using local data folder", "data_folder", cfg.DataFolder)
	return base, eodobs.Wrap(base), nil
}

// initializeRemote builds a client and a summarizer that query a running
// server
func initializeRemote(ctx context.Context, baseURL string, timeout time.Duration) (*api.Client, interfaces.StockLogSummarizer) {
	client := api.NewClient(baseURL,
		api.WithLogging(true),
		api.WithTimeout(timeout),
		api.WithHeader("User-Agent", userAgent),
	)
	logger.Debug(ctx, "Using remote server", "url", baseURL, "timeout", timeout)
	return client, eodobs.Wrap(api.NewRemoteSummarizer(client))
}
