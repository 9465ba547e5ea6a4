package api

import (
	"context"

	"cinesearch/internal/analysis"
	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/services"
	"cinesearch/internal/services/youtube"
	"cinesearch/internal/trailer"
)

const defaultRelatedVideos = 10

// Title returns one catalog entry.
func (s *Service) Title(_ context.Context, id string) (Title, error) {
	t, err := s.lookup(id)
	if err != nil {
		return Title{}, err
	}
	return FromTitle(t), nil
}

// Analyze returns the content analysis of one title without recording it.
func (s *Service) Analyze(ctx context.Context, id string) (analysis.Result, error) {
	t, err := s.lookup(id)
	if err != nil {
		return analysis.Result{}, err
	}
	ctx = services.WithOperation(services.WithTitleID(ctx, id), "analyze")
	res := s.analyzer.Analyze(ctx, t)
	if res.Critique == "" && !catalog.IsBlank(t.Enrichment.Critique) {
		res.Critique = t.Enrichment.Critique
	}
	return res, nil
}

// RelatedVideos returns review and analysis videos about a title. An
// unconfigured or failing provider yields an empty list.
func (s *Service) RelatedVideos(ctx context.Context, id string, maxResults int) ([]youtube.VideoInfo, error) {
	t, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if s.videos == nil || !s.videos.Configured() {
		return []youtube.VideoInfo{}, nil
	}
	if maxResults <= 0 {
		maxResults = defaultRelatedVideos
	}
	ctx = services.WithOperation(services.WithTitleID(ctx, id), "related")
	videos, err := s.videos.SearchRelated(ctx, t.Name, maxResults)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "related video search failed", "related_search_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no related videos returned"),
		)
		return []youtube.VideoInfo{}, nil
	}
	return videos, nil
}

// FillTrailers searches trailers for up to limit titles missing one.
func (s *Service) FillTrailers(ctx context.Context, limit int) trailer.FillReport {
	ctx, _ = services.EnsureRequestID(ctx)
	return s.resolver.FillMissing(services.WithOperation(ctx, "fill_trailers"), limit)
}

// Stats summarises the dataset.
func (s *Service) Stats(context.Context) Stats {
	st := s.store.Stats()
	return Stats{
		TotalTitles:     st.Total,
		Movies:          st.Movies,
		TVShows:         st.TVShows,
		Countries:       st.Countries,
		YearMin:         st.YearMin,
		YearMax:         st.YearMax,
		MissingTrailers: st.MissingTrailers,
		VideoProvider:   s.resolver.Configured(),
		LanguageModel:   s.refiner.Available(),
	}
}

// Flush persists pending enrichment, returning the flush error.
func (s *Service) Flush() error {
	err := s.store.Flush()
	metrics.RecordFlush(err)
	return err
}

func (s *Service) lookup(id string) (catalog.Title, error) {
	t, ok := s.store.Get(id)
	if !ok {
		return catalog.Title{}, services.Wrap(services.ErrNotFound, "api", "lookup", "unknown title "+id, nil)
	}
	return t, nil
}
