package api

import (
	"context"
	"log/slog"
	"strings"

	"cinesearch/internal/analysis"
	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/recommend"
	"cinesearch/internal/refine"
	"cinesearch/internal/search"
	"cinesearch/internal/services"
	"cinesearch/internal/services/youtube"
	"cinesearch/internal/trailer"
	"cinesearch/internal/validation"
)

const defaultSearchLimit = 10

// RelatedSearcher finds videos about a title.
type RelatedSearcher interface {
	Configured() bool
	SearchRelated(ctx context.Context, title string, maxResults int) ([]youtube.VideoInfo, error)
}

// Deps wires the collaborators of a Service. Store is required; a nil
// Analyzer, Resolver or Refiner is replaced by an unconfigured one.
type Deps struct {
	Store        *catalog.Store
	Analyzer     *analysis.Analyzer
	Resolver     *trailer.Resolver
	Refiner      *refine.Refiner
	Videos       RelatedSearcher
	Logger       *slog.Logger
	DefaultLimit int
}

// Service orchestrates search, recommendation and enrichment.
type Service struct {
	store        *catalog.Store
	engine       *search.Engine
	analyzer     *analysis.Analyzer
	ranker       *recommend.Ranker
	resolver     *trailer.Resolver
	refiner      *refine.Refiner
	videos       RelatedSearcher
	logger       *slog.Logger
	defaultLimit int
}

// NewService constructs a Service from deps.
func NewService(deps Deps) *Service {
	logger := logging.NewComponentLogger(deps.Logger, "api")
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.New(nil, analysis.WithLogger(deps.Logger))
	}
	if deps.Resolver == nil {
		deps.Resolver = trailer.NewResolver(nil, deps.Store, deps.Logger)
	}
	if deps.Refiner == nil {
		deps.Refiner = refine.New(nil, deps.Logger)
	}
	if deps.DefaultLimit <= 0 {
		deps.DefaultLimit = defaultSearchLimit
	}
	return &Service{
		store:        deps.Store,
		engine:       search.NewEngine(deps.Store),
		analyzer:     deps.Analyzer,
		ranker:       recommend.NewRanker(deps.Analyzer, deps.Logger),
		resolver:     deps.Resolver,
		refiner:      deps.Refiner,
		videos:       deps.Videos,
		logger:       logger,
		defaultLimit: deps.DefaultLimit,
	}
}

// Search runs a catalog search and enriches each result.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	ctx, requestID := services.EnsureRequestID(ctx)
	ctx = services.WithOperation(ctx, "search")
	logger := logging.WithContext(ctx, s.logger)

	req.Query = strings.TrimSpace(req.Query)
	req.Scope = strings.ToLower(strings.TrimSpace(req.Scope))
	if verr := validation.ValidateStruct(&req); verr != nil {
		return SearchResponse{}, verr
	}
	if req.Scope == "" {
		req.Scope = search.ScopeAll
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}

	var titles []catalog.Title
	refined := false
	if req.SmartQuery && s.refiner.Available() {
		titles, refined = s.refiner.Refine(ctx, req.Query, s.engine.Search(req.Query, req.Scope, 0))
		if len(titles) > req.Limit {
			titles = titles[:req.Limit]
		}
	} else {
		titles = s.engine.Search(req.Query, req.Scope, req.Limit)
	}

	results := make([]EnrichedTitle, 0, len(titles))
	persisted := 0
	for _, t := range titles {
		item, wrote := s.enrich(ctx, t, req.IncludeTrailers, req.IncludeAnalysis, nil)
		if wrote {
			persisted++
		}
		results = append(results, item)
	}
	if persisted > 0 {
		s.flush(ctx)
	}

	metrics.RecordSearch(req.Scope, refined, len(results))
	logger.Info("search complete",
		logging.String("query", req.Query),
		logging.String("scope", req.Scope),
		logging.Bool("refined", refined),
		logging.Int("results", len(results)),
		logging.Int("trailers_persisted", persisted),
	)
	return SearchResponse{
		Results:    results,
		TotalCount: len(results),
		Query:      req.Query,
		Scope:      req.Scope,
		Refined:    refined,
		RequestID:  requestID,
	}, nil
}

// Recommend ranks the whole catalog against the request preferences.
func (s *Service) Recommend(ctx context.Context, req RecommendationRequest) (RecommendationResponse, error) {
	ctx, requestID := services.EnsureRequestID(ctx)
	ctx = services.WithOperation(ctx, "recommend")
	logger := logging.WithContext(ctx, s.logger)

	if verr := validation.ValidateStruct(&req); verr != nil {
		return RecommendationResponse{}, verr
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}

	ranked := s.ranker.Rank(ctx, req.Preferences, s.store.All(), 0)
	total := len(ranked)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	out := make([]Recommendation, 0, len(ranked))
	persisted := 0
	for _, rec := range ranked {
		t, ok := s.store.Get(rec.TitleID)
		if !ok {
			continue
		}
		var precomputed *analysis.Result
		if req.Preferences.IncludeAnalysis {
			res := rec.Analysis
			precomputed = &res
		}
		item, wrote := s.enrich(ctx, t, req.Preferences.IncludeTrailers, false, precomputed)
		if wrote {
			persisted++
		}
		out = append(out, Recommendation{
			EnrichedTitle: item,
			Score:         rec.Score,
			Reason:        rec.Reason,
			GenreMatch:    rec.GenreMatch,
		})
	}
	if persisted > 0 {
		s.flush(ctx)
	}

	logger.Info("recommendations complete",
		logging.Int("qualified", total),
		logging.Int("returned", len(out)),
		logging.Int("trailers_persisted", persisted),
	)
	return RecommendationResponse{
		Recommendations: out,
		TotalCount:      total,
		Preferences:     req.Preferences,
		RequestID:       requestID,
	}, nil
}

// enrich resolves the trailer and, when asked, analyses t. Fresh analyses
// are written to the enrichment columns; precomputed ones are attached as is.
// It reports whether a new trailer URL was stored.
func (s *Service) enrich(ctx context.Context, t catalog.Title, includeTrailer, includeAnalysis bool, precomputed *analysis.Result) (EnrichedTitle, bool) {
	ctx = services.WithTitleID(ctx, t.ID)
	resolution := s.resolver.Resolve(ctx, t, includeTrailer)
	item := EnrichedTitle{
		Title:          FromTitle(t),
		Trailer:        resolution.Video,
		TrailerOutcome: resolution.Outcome,
		Analysis:       precomputed,
	}
	if resolution.Video != nil {
		item.TrailerEmbedURL = youtube.EmbedURL(resolution.Video.ID)
		item.TrailerEmbedHTML = youtube.EmbedHTML(resolution.Video.ID, 0, 0)
		if resolution.Persisted {
			item.Title.TrailerURL = youtube.WatchURL(resolution.Video.ID)
		}
	}
	if includeAnalysis {
		res := s.analyze(ctx, t)
		item.Analysis = &res
	}
	return item, resolution.Persisted
}

// analyze runs the analyzer, reuses a stored critique when the fresh result
// has none, and records the outcome on the title.
func (s *Service) analyze(ctx context.Context, t catalog.Title) analysis.Result {
	res := s.analyzer.Analyze(ctx, t)
	if res.Critique == "" && !catalog.IsBlank(t.Enrichment.Critique) {
		res.Critique = strings.TrimSpace(t.Enrichment.Critique)
	}
	if err := s.store.RecordAnalysis(t.ID, res.SentimentScore, res.RecommendationScore, res.Critique); err != nil {
		s.logger.Debug("analysis not recorded", logging.String(logging.FieldTitleID, t.ID), logging.Error(err))
	}
	return res
}

func (s *Service) flush(ctx context.Context) {
	err := s.store.Flush()
	metrics.RecordFlush(err)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "catalog flush failed", "catalog_flush_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check write permissions on paths.data_file"),
			logging.String(logging.FieldImpact, "enrichment kept in memory until the next successful flush"),
		)
	}
}
