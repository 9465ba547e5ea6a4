package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cinesearch/internal/analysis"
	"cinesearch/internal/api"
	"cinesearch/internal/catalog"
	"cinesearch/internal/config"
	"cinesearch/internal/logging"
	"cinesearch/internal/refine"
	"cinesearch/internal/services/llm"
	"cinesearch/internal/services/youtube"
	"cinesearch/internal/trailer"
	"cinesearch/internal/videocache"
)

// application holds the wired collaborators behind a command.
type application struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	cache   *videocache.Cache
	service *api.Service
}

func newApplication(cfg *config.Config) (*application, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := catalog.Load(cfg.Paths.DataFile, logger)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, logger: logger, store: store}

	videoHTTP, modelHTTP := providerHTTPClients(cfg)
	videoOpts := []youtube.Option{youtube.WithHTTPClient(videoHTTP)}
	if cfg.VideoCache.Enabled && cfg.YouTubeConfigured() {
		cache, err := videocache.Open(cfg.VideoCache.Path, cfg.VideoCacheTTL(), cfg.VideoCache.MaxEntries, logger)
		if err != nil {
			logging.WarnWithContext(logger, "video cache unavailable", "video_cache_unavailable",
				logging.Error(err),
				logging.String("path", cfg.VideoCache.Path),
				logging.String(logging.FieldImpact, "video details are fetched on every lookup"),
				logging.String(logging.FieldErrorHint, "check video_cache.path permissions or set video_cache.enabled = false"),
			)
		} else {
			app.cache = cache
			videoOpts = append(videoOpts, youtube.WithDetailsCache(cache))
		}
	}
	videos := youtube.New(youtube.Config{
		APIKey:            cfg.YouTube.APIKey,
		BaseURL:           cfg.YouTube.BaseURL,
		MaxResults:        cfg.YouTube.MaxResults,
		CategoryID:        cfg.YouTube.CategoryID,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	}, videoOpts...)

	model := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, llm.WithHTTPClient(modelHTTP))

	app.service = api.NewService(api.Deps{
		Store: store,
		Analyzer: analysis.New(model,
			analysis.WithReferenceYear(cfg.Analysis.ReferenceYear),
			analysis.WithLogger(logger),
		),
		Resolver: trailer.NewResolver(videos, store, logger,
			trailer.WithBreaker(cfg.Trailers.BreakerFailureThreshold, cfg.BreakerTimeout()),
			trailer.WithFillBatchSize(cfg.Trailers.FillBatchSize),
		),
		Refiner:      refine.New(model, logger),
		Videos:       videos,
		Logger:       logger,
		DefaultLimit: cfg.Search.DefaultLimit,
	})

	logger.Debug("application wired",
		logging.Bool("video_provider", cfg.YouTubeConfigured()),
		logging.Bool("language_model", cfg.LLMConfigured()),
		logging.Bool("video_cache", app.cache != nil),
	)
	return app, nil
}

// providerHTTPClients returns the HTTP clients for the video provider and the
// language model, bounded by their configured request timeouts.
func providerHTTPClients(cfg *config.Config) (video, model *http.Client) {
	return &http.Client{Timeout: cfg.YouTubeTimeout()}, &http.Client{Timeout: cfg.LLMTimeout()}
}

// Close flushes pending enrichment and releases the video cache.
func (a *application) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.store.Dirty() {
		if err := a.service.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush catalog: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close video cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
