package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ersonp/famgraph/internal/application/handlers"
	"github.com/ersonp/famgraph/internal/domain/ports"
	"github.com/ersonp/famgraph/internal/domain/services"
	"github.com/ersonp/famgraph/internal/infrastructure/cache"
	"github.com/ersonp/famgraph/internal/infrastructure/config"
	"github.com/ersonp/famgraph/internal/infrastructure/familysearch"
	"github.com/ersonp/famgraph/internal/infrastructure/logging"
	"github.com/ersonp/famgraph/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for the fetch command.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config       *config.Config
	Logger       *slog.Logger
	FetchHandler *handlers.FetchHandler
}

// loadConfig reads the config file selected by --config, or the default
// one under the working directory.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	cfg, err := config.Load(cwd, globalConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// withLogger builds the logger described by cfg and closes it afterwards.
func withLogger(cfg *config.Config, verbose bool, fn func(*slog.Logger) error) error {
	logger, closeLog, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Verbose: verbose,
	}, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer closeLog()
	return fn(logger)
}

// withStore opens the SQLite store at the configured cache path.
func withStore(ctx context.Context, cfg *config.Config, fn func(*sqlite.Repository) error) error {
	if cfg.Cache.Path == "" {
		return errors.New("cache.path is not set, the run log is unavailable")
	}
	store, err := sqlite.NewRepository(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}
	return fn(store)
}

// withDeps builds every dependency of a fetch from cfg, then calls fn.
// It handles cleanup automatically. Without a cache path the run is
// neither cached nor logged.
func withDeps(ctx context.Context, cfg *config.Config, verbose bool, fn func(*Deps) error) error {
	if cfg.Source.SessionID == "" {
		return errors.New("source.session_id is required (set FAMGRAPH_SOURCE_SESSION_ID)")
	}

	return withLogger(cfg, verbose, func(logger *slog.Logger) error {
		if cfg.Cache.Path == "" {
			return fn(newDeps(cfg, logger, nil))
		}
		return withStore(ctx, cfg, func(store *sqlite.Repository) error {
			return fn(newDeps(cfg, logger, store))
		})
	})
}

func newDeps(cfg *config.Config, logger *slog.Logger, store *sqlite.Repository) *Deps {
	opts := []familysearch.Option{
		familysearch.WithLogger(logger),
		familysearch.WithTimeout(cfg.Source.Timeout()),
		familysearch.WithRateLimit(cfg.Source.RateLimit, cfg.Source.Burst),
		familysearch.WithRetries(cfg.Source.MaxRetries, familysearch.DefaultRetryDelay),
	}
	if cfg.Cache.Enabled && store != nil {
		memory := cache.NewMemoryCache(cfg.Cache.MemoryTTL(), 2*cfg.Cache.MemoryTTL())
		opts = append(opts, familysearch.WithCache(cache.NewLayeredCache(memory, store), cfg.Cache.TTL()))
	}
	client := familysearch.NewClient(cfg.Source.BaseURL, cfg.Source.SessionID, opts...)

	builder := services.NewBuildService(client,
		services.WithLogger(logger),
		services.WithBatchSize(cfg.Fetch.BatchSize),
		services.WithWorkers(cfg.Fetch.Workers),
	)
	supplement := services.NewSupplementService(client, logger)

	var runs ports.RunLog
	if store != nil {
		runs = store
	}
	return &Deps{
		Config:       cfg,
		Logger:       logger,
		FetchHandler: handlers.NewFetchHandler(client, builder, supplement, runs, logger),
	}
}

// openOutput returns path opened for writing, or stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return file, file.Close, nil
}
