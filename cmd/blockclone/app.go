package main

import (
	"fmt"
	"net/http"
	"os"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/cache"
	"github.com/c360studio/blockclone/clone"
	"github.com/c360studio/blockclone/config"
	"github.com/c360studio/blockclone/notion"
)

// tokenEnvVar holds the integration token. Required for every command.
const tokenEnvVar = "NOTION_API_KEY"

// app wires together the client, registry and optional cache for one
// command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *notion.Client
	src      clone.Source
	registry *block.Registry
	store    *cache.Store
}

func newApp(configPath, logLevel string) (*app, error) {
	logger := newLogger(logLevel)

	cfg, err := config.NewLoader(logger).Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	token := os.Getenv(tokenEnvVar)
	if token == "" {
		return nil, fmt.Errorf("%s not set", tokenEnvVar)
	}

	metrics := notion.NewMetrics(prometheus.NewRegistry())
	client := notion.NewClient(token,
		notion.WithBaseURL(cfg.API.BaseURL),
		notion.WithVersion(cfg.API.Version),
		notion.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		notion.WithRetryConfig(notion.RetryConfig{
			MaxAttempts:       cfg.Retry.MaxAttempts,
			BackoffBase:       cfg.Retry.BackoffBase,
			BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			MaxBackoff:        cfg.Retry.MaxBackoff,
		}),
		notion.WithLogger(logger),
		notion.WithMetrics(metrics),
	)

	registry := block.DefaultRegistry()
	if cfg.Clone.TypeRegistry != "" {
		if err := registry.LoadFile(cfg.Clone.TypeRegistry); err != nil {
			return nil, fmt.Errorf("load type registry: %w", err)
		}
		logger.Debug("extended type registry", "path", cfg.Clone.TypeRegistry)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		src:      client,
		registry: registry,
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open block cache: %w", err)
		}
		a.store = store
		a.src = cache.NewSource(client, store, cfg.Cache.MaxAge, logger)
		logger.Debug("block cache enabled", "path", cfg.Cache.Path)
	}

	return a, nil
}

// engine builds a replication engine. Reads may come from the cache;
// the writer's protection checks always hit the API directly.
func (a *app) engine() *clone.Engine {
	return clone.NewEngine(a.client, a.client, a.registry, a.logger).WithCachedReads(a.src)
}

// options translates the config into per-job engine options.
func (a *app) options(dryRun bool) clone.Options {
	return clone.Options{
		DryRun:          dryRun,
		MaxDepth:        a.cfg.Clone.MaxDepth,
		MaxAliasHops:    a.cfg.Clone.MaxAliasHops,
		BatchSize:       a.cfg.Clone.BatchSize,
		SkipUnsupported: a.cfg.Clone.SkipUnsupported,
		ProbeContainers: a.cfg.Clone.ProbeContainers,
	}
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close block cache", "error", err)
		}
	}
}
