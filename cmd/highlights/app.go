package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/config"
	"github.com/romangod6/cricket-highlights/internal/catalog"
	"github.com/romangod6/cricket-highlights/internal/classify"
	"github.com/romangod6/cricket-highlights/internal/crawler"
	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/metrics"
	"github.com/romangod6/cricket-highlights/internal/models"
	"github.com/romangod6/cricket-highlights/internal/pipeline"
	"github.com/romangod6/cricket-highlights/internal/storage"
	"github.com/romangod6/cricket-highlights/internal/utils"
	"github.com/romangod6/cricket-highlights/internal/youtube"
)

// app holds the dependencies of one command invocation.
type app struct {
	cfg      *config.Config
	log      *utils.RunLogger
	store    storage.BlobStore
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   *youtube.Client
	runner   *pipeline.Runner
}

func newApp(command, configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := utils.NewRunLogger(command, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	client := youtube.NewClient(
		youtube.NewKeyManager(cfg.YouTube.APIKeys),
		log.Logger,
		youtube.WithRequestInterval(cfg.YouTube.RequestInterval),
	)

	lex := lexicon.Default()
	policy := cfg.ClassifierPolicy()

	runner := pipeline.NewRunner(pipeline.Config{
		Sources:    buildSources(cfg, client, log.Logger),
		Classifier: classify.New(policy),
		Lexicon:    lex,
		Store:      store,
		Keys:       catalog.Keys{Prefix: cfg.Catalog.Prefix},
		Metrics:    m,
		Logger:     log.Logger,
	})

	log.Info("configuration loaded",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("prefix", cfg.Catalog.Prefix),
		zap.String("policy", policy.Version),
		zap.String("strategy", cfg.Classifier.Strategy),
		zap.Int("api_keys", len(cfg.YouTube.APIKeys)),
		zap.Int("channels", len(cfg.YouTube.Channels)))

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		registry: registry,
		metrics:  m,
		client:   client,
		runner:   runner,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("error closing storage", zap.Error(err))
	}
	a.log.Close()
}

// buildSources lists the sources in fetch order: channels, the classic
// search, then the scraped sites. YouTube sources are left out when no
// API key is configured.
func buildSources(cfg *config.Config, client *youtube.Client, logger *zap.Logger) []pipeline.Source {
	var sources []pipeline.Source

	if len(cfg.YouTube.APIKeys) == 0 {
		logger.Warn("no youtube api keys configured, skipping youtube sources")
	} else {
		for _, ch := range cfg.YouTube.Channels {
			sources = append(sources, youtube.NewChannelSource(client, ch.ID, ch.Name, cfg.YouTube.MaxPerChannel, logger))
		}
		if cfg.YouTube.Classic.Enabled {
			c := cfg.YouTube.Classic
			sources = append(sources, youtube.NewClassicSource(client, c.Query, c.MinViews, c.Limit, logger))
		}
	}

	for _, name := range cfg.Scraper.Sites {
		var site crawler.SiteConfig
		switch strings.ToLower(name) {
		case "ipl":
			site = crawler.IPLSite()
		case "bcci":
			site = crawler.BCCISite()
		default:
			continue
		}
		if cfg.Scraper.UserAgent != "" {
			site.UserAgent = cfg.Scraper.UserAgent
		}
		if cfg.Scraper.RequestTimeout > 0 {
			site.RequestTimeout = cfg.Scraper.RequestTimeout
		}
		site.Delay = cfg.Scraper.Delay
		sources = append(sources, crawler.NewScraper(site, logger))
	}
	return sources
}

// catalogRunner is the part of pipeline.Runner the gate needs.
type catalogRunner interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
	Ingest(ctx context.Context, raw []models.RawVideo) (*pipeline.RunResult, error)
}

// runGate serializes catalog writes between scheduled runs and webhook
// ingests, and remembers the last result.
type runGate struct {
	runner catalogRunner
	logger *zap.Logger

	mu sync.Mutex

	lastMu sync.RWMutex
	last   *pipeline.RunResult
}

func newRunGate(runner catalogRunner, logger *zap.Logger) *runGate {
	return &runGate{runner: runner, logger: logger}
}

// Run starts a scheduled run unless one is already in progress.
func (g *runGate) Run(ctx context.Context) {
	if !g.mu.TryLock() {
		g.logger.Warn("skipping scheduled run, previous run still in progress")
		return
	}
	defer g.mu.Unlock()

	result, err := g.runner.Run(ctx)
	g.record(result)
	if err != nil {
		g.logger.Error("scheduled run failed", zap.String("summary", result.Summary()), zap.Error(err))
		return
	}
	g.logger.Info("scheduled run finished", zap.String("summary", result.Summary()))
}

// Ingest waits for any run in progress, then merges the videos.
func (g *runGate) Ingest(ctx context.Context, raw []models.RawVideo) (*pipeline.RunResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	result, err := g.runner.Ingest(ctx, raw)
	g.record(result)
	return result, err
}

func (g *runGate) record(result *pipeline.RunResult) {
	if result == nil {
		return
	}
	g.lastMu.Lock()
	g.last = result
	g.lastMu.Unlock()
}

func (g *runGate) LastRun() *pipeline.RunResult {
	g.lastMu.RLock()
	defer g.lastMu.RUnlock()
	return g.last
}
