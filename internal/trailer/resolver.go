package trailer

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/services/youtube"
)

// Outcome classifies a resolution.
type Outcome string

const (
	// OutcomeResolved means the provider search found a trailer.
	OutcomeResolved Outcome = "resolved"
	// OutcomeCached means the title's stored URL supplied the trailer.
	OutcomeCached Outcome = "cached"
	// OutcomeUnavailable means no lookup was possible or it found nothing.
	OutcomeUnavailable Outcome = "unavailable"
	// OutcomeFailed means the provider call errored.
	OutcomeFailed Outcome = "failed"
)

const (
	defaultFailureThreshold = 5
	defaultBreakerTimeout   = 60 * time.Second
	defaultFillBatchSize    = 50
)

// Resolution is the result of resolving one title.
type Resolution struct {
	Outcome   Outcome            `json:"outcome"`
	Video     *youtube.VideoInfo `json:"video,omitempty"`
	Persisted bool               `json:"persisted"`
}

// Provider is the video lookup capability the resolver needs.
type Provider interface {
	Configured() bool
	SearchTrailer(ctx context.Context, title string, year int) (*youtube.VideoInfo, error)
	VideoDetails(ctx context.Context, id string) (*youtube.VideoInfo, error)
}

// Store is the catalog surface the resolver writes to.
type Store interface {
	Get(id string) (catalog.Title, bool)
	SetTrailerURL(id, url string) (bool, error)
	MissingTrailerIDs() []string
	MissingTrailerCount() int
	Flush() error
}

// Resolver maps titles to trailer videos.
type Resolver struct {
	provider      Provider
	store         Store
	logger        *slog.Logger
	breaker       *gobreaker.CircuitBreaker[*youtube.VideoInfo]
	fillBatchSize int
}

type settings struct {
	failureThreshold uint32
	breakerTimeout   time.Duration
	fillBatchSize    int
}

// Option configures a Resolver.
type Option func(*settings)

// WithBreaker sets the consecutive failures that open the breaker and how
// long it stays open.
func WithBreaker(failureThreshold int, timeout time.Duration) Option {
	return func(s *settings) {
		if failureThreshold > 0 {
			s.failureThreshold = uint32(failureThreshold)
		}
		if timeout > 0 {
			s.breakerTimeout = timeout
		}
	}
}

// WithFillBatchSize sets the FillMissing default when no maximum is given.
func WithFillBatchSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.fillBatchSize = size
		}
	}
}

// NewResolver constructs a Resolver. A nil provider behaves like an
// unconfigured one.
func NewResolver(provider Provider, store Store, logger *slog.Logger, opts ...Option) *Resolver {
	cfg := settings{
		failureThreshold: defaultFailureThreshold,
		breakerTimeout:   defaultBreakerTimeout,
		fillBatchSize:    defaultFillBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if provider == nil {
		provider = youtube.New(youtube.Config{})
	}
	logger = logging.NewComponentLogger(logger, "trailer")
	return &Resolver{
		provider:      provider,
		store:         store,
		logger:        logger,
		breaker:       newBreaker(cfg.failureThreshold, cfg.breakerTimeout, logger),
		fillBatchSize: cfg.fillBatchSize,
	}
}

// Configured reports whether provider lookups are possible.
func (r *Resolver) Configured() bool {
	return r.provider.Configured()
}

// Resolve finds the trailer for t. A stored URL is never replaced; search
// controls whether a title without one may trigger a provider search.
func (r *Resolver) Resolve(ctx context.Context, t catalog.Title, search bool) Resolution {
	res := r.resolve(ctx, t, search)
	metrics.TrailerResolutionsTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (r *Resolver) resolve(ctx context.Context, t catalog.Title, search bool) Resolution {
	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldTitleID, t.ID))
	hasStored := t.Enrichment.HasTrailer()

	if hasStored {
		if id, ok := youtube.ExtractVideoID(t.Enrichment.TrailerURL); ok {
			return Resolution{Outcome: OutcomeCached, Video: r.cachedVideo(ctx, logger, t, id)}
		}
		logger.Debug("stored trailer url not recognised", logging.String("trailer_url", t.Enrichment.TrailerURL))
	}

	if !search || !r.provider.Configured() {
		return Resolution{Outcome: OutcomeUnavailable}
	}

	video, err := r.execute(func() (*youtube.VideoInfo, error) {
		return r.provider.SearchTrailer(ctx, t.Name, t.ReleaseYear)
	})
	if err != nil {
		query := youtube.TrailerQuery(t.Name, t.ReleaseYear)
		if softSearchFailure(err) {
			logging.WarnWithContext(logger, "trailer search failed", "trailer_search_failed",
				logging.String("query", query),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check youtube.api_key quota and network access"),
				logging.String(logging.FieldImpact, "title returned without trailer"),
			)
		} else {
			logging.ErrorWithContext(logger, "trailer search rejected", "trailer_search_rejected",
				logging.String("query", query),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the youtube configuration and the title name"),
				logging.String(logging.FieldImpact, "title returned without trailer"),
			)
		}
		return Resolution{Outcome: OutcomeFailed}
	}
	if video == nil {
		logger.Info("no trailer found", logging.String("title", t.Name))
		return Resolution{Outcome: OutcomeUnavailable}
	}

	res := Resolution{Outcome: OutcomeResolved, Video: video}
	if !hasStored {
		res.Persisted = r.persist(logger, t.ID, video.ID)
	}
	return res
}

// cachedVideo expands a stored id into details, or a minimal record when the
// provider is unconfigured or the lookup fails.
func (r *Resolver) cachedVideo(ctx context.Context, logger *slog.Logger, t catalog.Title, id string) *youtube.VideoInfo {
	if r.provider.Configured() {
		video, err := r.execute(func() (*youtube.VideoInfo, error) {
			return r.provider.VideoDetails(ctx, id)
		})
		if err == nil && video != nil {
			return video
		}
		if err != nil {
			logger.Debug("stored trailer details unavailable",
				logging.String("video_id", id),
				logging.Error(err),
			)
		}
	}
	return &youtube.VideoInfo{ID: id, Title: t.Name + " Trailer"}
}

func (r *Resolver) persist(logger *slog.Logger, titleID, videoID string) bool {
	wrote, err := r.store.SetTrailerURL(titleID, youtube.WatchURL(videoID))
	if err != nil {
		logging.WarnWithContext(logger, "trailer url not stored", "trailer_persist_failed",
			logging.String("video_id", videoID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "trailer will be searched again next time"),
		)
		return false
	}
	if wrote {
		metrics.TrailersPersistedTotal.Inc()
	}
	return wrote
}

// FillReport summarises a FillMissing run.
type FillReport struct {
	Updated       int    `json:"updated"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	MissingBefore int    `json:"total_missing_before"`
	MissingAfter  int    `json:"total_missing_after"`
	Message       string `json:"message,omitempty"`
}

// FillMissing searches trailers for up to limit titles that lack one, in
// table order. Titles beyond limit are reported as skipped. The catalog is flushed
// when at least one URL was written; a flush failure is logged only.
func (r *Resolver) FillMissing(ctx context.Context, limit int) FillReport {
	logger := logging.WithContext(ctx, r.logger)
	if limit <= 0 {
		limit = r.fillBatchSize
	}

	missing := r.store.MissingTrailerIDs()
	report := FillReport{MissingBefore: len(missing)}
	if !r.provider.Configured() {
		report.MissingAfter = report.MissingBefore
		report.Message = "youtube api key not configured"
		return report
	}

	batch := missing
	if len(batch) > limit {
		batch = batch[:limit]
	}
	report.Skipped = len(missing) - len(batch)

	for _, id := range batch {
		t, ok := r.store.Get(id)
		if !ok || catalog.IsBlank(t.Name) {
			continue
		}
		res := r.Resolve(ctx, t, true)
		switch {
		case res.Persisted:
			report.Updated++
		case res.Outcome == OutcomeResolved:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	if report.Updated > 0 {
		err := r.store.Flush()
		metrics.RecordFlush(err)
		if err != nil {
			logging.WarnWithContext(logger, "catalog flush failed", "catalog_flush_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check write permissions on paths.data_file"),
				logging.String(logging.FieldImpact, "new trailer urls kept in memory only"),
			)
		}
	}

	report.MissingAfter = r.store.MissingTrailerCount()
	report.Message = "updated " + strconv.Itoa(report.Updated) + " of " + strconv.Itoa(report.MissingBefore) + " missing trailers"
	logger.Info("trailer fill complete",
		logging.Int("updated", report.Updated),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int("missing_before", report.MissingBefore),
		logging.Int("missing_after", report.MissingAfter),
	)
	return report
}
