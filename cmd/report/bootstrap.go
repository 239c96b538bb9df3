package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"futures-report/internal/feed"
	"futures-report/internal/interfaces"
	"futures-report/internal/llm"
	"futures-report/internal/logger"
	"futures-report/internal/news"
	"futures-report/internal/report"
	"futures-report/internal/runlog"
	"futures-report/internal/store"
)

// system bundles everything a command needs after bootstrap.
type system struct {
	cfg          *store.Config
	orchestrator *report.Orchestrator
}

// initializeSystem loads the environment and config, initializes the
// logger and wires the pipeline. Provider API keys are read here once
// and handed down; nothing below cmd touches the environment for them.
func initializeSystem(ctx context.Context, configPath string) (*system, error) {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", configPath)
		return nil, err
	}

	compressOldLogs(ctx)

	f, err := buildFeed(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gen, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	newsSvc := buildNewsService(ctx, cfg)
	writer := report.NewXLSXWriter(cfg.Report.OutDir)

	return &system{
		cfg:          cfg,
		orchestrator: report.NewOrchestrator(cfg, f, gen, newsSvc, writer),
	}, nil
}

func (s *system) shutdown(ctx context.Context) {
	if err := logger.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tracer shutdown: %v\n", err)
	}
}

// compressOldLogs compresses old run logs if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("REPORT_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := runlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

func buildFeed(ctx context.Context, cfg *store.Config) (interfaces.Feed, error) {
	timeout := time.Duration(cfg.Feed.TimeoutSeconds) * time.Second
	switch cfg.Feed.Source {
	case "SINA":
		logger.Info(ctx, "Using Sina minute-bar feed", "timeout", timeout)
		return feed.NewSinaFeed(timeout), nil
	case "STATIC":
		logger.Warn(ctx, "Using STATIC synthetic feed - documents will not reflect real prices")
		return feed.NewStaticFeed(), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}

func buildGenerator(ctx context.Context, cfg *store.Config) (interfaces.Generator, error) {
	if cfg.Mode == "DRY_RUN" || cfg.LLM.Provider == "NOOP" {
		logger.Warn(ctx, "Narrative generation disabled - using placeholder text")
		return llm.NewNoopGenerator(), nil
	}

	gen, err := llm.NewDeepSeekGenerator(llm.DeepSeekParams{
		APIKey:      os.Getenv("DEEPSEEK_API_KEY"),
		Model:       cfg.LLM.Model,
		Endpoint:    cfg.LLM.Endpoint,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("deepseek generator: %w", err)
	}
	logger.Info(ctx, "Using DeepSeek narrative generator", "model", cfg.LLM.Model)
	return gen, nil
}

func buildNewsService(ctx context.Context, cfg *store.Config) *news.Service {
	ncfg := &news.ServiceConfig{
		MaxItems:      cfg.News.MaxItems,
		TopRefs:       cfg.News.TopRefs,
		DaysBack:      cfg.News.DaysBack,
		CacheDuration: time.Duration(cfg.News.CacheMinutes) * time.Minute,
		ScrapeTimeout: time.Duration(cfg.News.ScrapeTimeoutSeconds) * time.Second,
		EnableSerper:  cfg.News.EnableSerper,
		EnableScrape:  cfg.News.EnableScrape,
		EnableRSS:     cfg.News.EnableRSS,
		RSSFeeds:      cfg.News.RSSFeeds,
		Dimensions:    cfg.News.Dimensions,
		SerperAPIKey:  os.Getenv("SERPER_API_KEY"),
	}

	if ncfg.EnableSerper && ncfg.SerperAPIKey == "" {
		logger.Warn(ctx, "SERPER_API_KEY missing - search collection disabled")
		ncfg.EnableSerper = false
	}

	return news.NewService(ncfg)
}
