package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bonzainsights/WorldInsights/internal/aggregator"
	"github.com/bonzainsights/WorldInsights/internal/clients"
	"github.com/bonzainsights/WorldInsights/internal/config"
	"github.com/bonzainsights/WorldInsights/internal/llm"
	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/reports"
	"github.com/bonzainsights/WorldInsights/internal/router"
	"github.com/bonzainsights/WorldInsights/internal/server"
	"github.com/bonzainsights/WorldInsights/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	if level := logger.ParseLevel(cfg.LogLevel); level != -1 {
		logger.GetGlobalLogger().SetLevel(level)
	}

	logger.Info("Starting World Insights service", map[string]interface{}{
		"version":     config.GetVersion(),
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"storage":     cfg.StorageMode,
	})

	httpOpts := clients.Options{
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryWait:  cfg.RetryWait,
	}

	sources := []aggregator.Source{
		{Tag: clients.SourceWorldBank, Client: clients.NewWorldBankClient(withBase(httpOpts, cfg.WorldBankURL))},
		{Tag: clients.SourceWHO, Client: clients.NewWHOClient(withBase(httpOpts, cfg.WHOURL))},
		{Tag: clients.SourceFAO, Client: clients.NewFAOClient(withBase(httpOpts, cfg.FAOURL))},
		{Tag: clients.SourceOpenMeteo, Client: clients.NewOpenMeteoClient(withBase(httpOpts, cfg.OpenMeteoURL))},
		{Tag: clients.SourceNASA, Client: clients.NewNASAPowerClient(withBase(httpOpts, cfg.NASAPowerURL), cfg.NASAAPIKey)},
	}

	agg := aggregator.New(sources, router.New(), cfg.FetchConcurrency)

	store, err := storage.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", err)
	}

	narrative := llm.NewNarrativeClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if !narrative.Enabled() {
		logger.Info("OpenAI key not configured, narrative uses the template fallback")
	}

	reportSvc := reports.NewService(agg, narrative, store)

	srv := server.New(cfg, agg, reportSvc, store)
	defer srv.Close()

	if err := srv.Start(ctx); err != nil {
		logger.Error("HTTP server error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}

func withBase(opts clients.Options, baseURL string) clients.Options {
	opts.BaseURL = baseURL
	return opts
}
