package api_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cinesearch/internal/analysis"
	"cinesearch/internal/api"
	"cinesearch/internal/catalog"
	"cinesearch/internal/recommend"
	"cinesearch/internal/refine"
	"cinesearch/internal/services"
	"cinesearch/internal/services/youtube"
	"cinesearch/internal/trailer"
	"cinesearch/internal/validation"
)

type fakeProvider struct {
	hits     map[string]string
	searches int
}

func (f *fakeProvider) Configured() bool { return true }

func (f *fakeProvider) SearchTrailer(_ context.Context, title string, _ int) (*youtube.VideoInfo, error) {
	f.searches++
	if id, ok := f.hits[title]; ok {
		return &youtube.VideoInfo{ID: id, Title: title + " Trailer"}, nil
	}
	return nil, nil
}

func (f *fakeProvider) VideoDetails(_ context.Context, id string) (*youtube.VideoInfo, error) {
	return &youtube.VideoInfo{ID: id, Title: "details"}, nil
}

type fakeRelated struct {
	configured bool
	err        error
	query      string
}

func (f *fakeRelated) Configured() bool { return f.configured }

func (f *fakeRelated) SearchRelated(_ context.Context, title string, _ int) ([]youtube.VideoInfo, error) {
	f.query = title
	if f.err != nil {
		return nil, f.err
	}
	return []youtube.VideoInfo{{ID: "rel00000001"}}, nil
}

type fakeModel struct{ content string }

func (f fakeModel) Available() bool { return true }

func (f fakeModel) CompleteJSON(context.Context, string, string) (string, error) {
	return f.content, nil
}

func sampleStore() *catalog.Store {
	return catalog.NewStore([]catalog.Title{
		{ID: "s1", Type: "Movie", Name: "Dark Waters", Description: "A brilliant, emotional drama about a lawyer", ListedIn: "Dramas", ReleaseYear: 2019, Rating: "PG-13"},
		{ID: "s2", Type: "TV Show", Name: "Dark", Description: "A thrilling time-travel mystery", ListedIn: "International TV Shows, TV Mysteries", ReleaseYear: 2017, Rating: "TV-MA",
			Enrichment: catalog.Enrichment{TrailerURL: "https://youtu.be/darkdark001", Critique: "Dense and rewarding."}},
		{ID: "s3", Type: "Movie", Name: "Laugh Out", Description: "A hilarious comedy", ListedIn: "Comedies", ReleaseYear: 2005, Director: "Dark Lord"},
	}, nil)
}

func newService(store *catalog.Store, provider trailer.Provider, opts ...func(*api.Deps)) *api.Service {
	deps := api.Deps{
		Store:    store,
		Resolver: trailer.NewResolver(provider, store, nil),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return api.NewService(deps)
}

func TestSearchEnrichesAndPersists(t *testing.T) {
	store := sampleStore()
	provider := &fakeProvider{hits: map[string]string{"Dark Waters": "waters00001"}}
	svc := newService(store, provider)

	resp, err := svc.Search(context.Background(), api.SearchRequest{Query: "  DARK ", IncludeTrailers: true, IncludeAnalysis: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Scope != "all" || resp.Query != "DARK" || resp.RequestID == "" {
		t.Fatalf("unexpected echo %+v", resp)
	}
	if resp.TotalCount != 3 {
		t.Fatalf("expected 3 results, got %d", resp.TotalCount)
	}

	first := resp.Results[0]
	if first.TrailerOutcome != trailer.OutcomeResolved || first.Title.TrailerURL != "https://www.youtube.com/watch?v=waters00001" {
		t.Fatalf("first result not resolved: %+v", first)
	}
	second := resp.Results[1]
	if second.TrailerOutcome != trailer.OutcomeCached || second.Trailer.ID != "darkdark001" {
		t.Fatalf("second result should use stored url: %+v", second)
	}
	if second.TrailerEmbedURL != "https://www.youtube.com/embed/darkdark001" || !strings.Contains(second.TrailerEmbedHTML, `src="https://www.youtube.com/embed/darkdark001"`) {
		t.Fatalf("missing embed for stored trailer: %+v", second)
	}
	if resp.Results[2].TrailerEmbedURL != "" || resp.Results[2].TrailerEmbedHTML != "" {
		t.Fatalf("unexpected embed without trailer: %+v", resp.Results[2])
	}
	if second.Analysis == nil || second.Analysis.Critique != "Dense and rewarding." {
		t.Fatalf("stored critique not reused: %+v", second.Analysis)
	}
	if resp.Results[2].TrailerOutcome != trailer.OutcomeUnavailable {
		t.Fatalf("third result outcome = %s", resp.Results[2].TrailerOutcome)
	}
	if provider.searches != 2 {
		t.Fatalf("expected 2 provider searches, got %d", provider.searches)
	}

	stored, _ := store.Get("s1")
	if stored.Enrichment.TrailerURL == "" || stored.Enrichment.Sentiment == nil {
		t.Fatalf("enrichment not recorded: %+v", stored.Enrichment)
	}
}

func TestSearchScopeAndLimit(t *testing.T) {
	svc := newService(sampleStore(), &fakeProvider{})

	resp, err := svc.Search(context.Background(), api.SearchRequest{Query: "dark", Scope: "Title", Limit: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalCount != 1 || resp.Results[0].Title.ID != "s1" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}
	if resp.Results[0].Analysis != nil {
		t.Fatal("analysis should be omitted unless requested")
	}
}

func TestSearchValidation(t *testing.T) {
	svc := newService(sampleStore(), &fakeProvider{})
	tests := []api.SearchRequest{
		{Query: " x "},
		{Query: "dark", Scope: "genre"},
		{Query: "dark", Limit: 101},
	}
	for _, req := range tests {
		_, err := svc.Search(context.Background(), req)
		var verr *validation.RequestValidationError
		if !errors.As(err, &verr) || !errors.Is(err, services.ErrValidation) {
			t.Fatalf("request %+v: expected validation error, got %v", req, err)
		}
	}
}

func TestSearchSmartQuery(t *testing.T) {
	store := sampleStore()
	svc := newService(store, &fakeProvider{}, func(d *api.Deps) {
		d.Refiner = refine.New(fakeModel{content: `{"normalized_query_en": "mystery"}`}, nil)
	})

	resp, err := svc.Search(context.Background(), api.SearchRequest{Query: "dark", SmartQuery: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !resp.Refined || resp.TotalCount != 1 || resp.Results[0].Title.ID != "s2" {
		t.Fatalf("unexpected refined results %+v", resp)
	}
}

func TestRecommend(t *testing.T) {
	store := sampleStore()
	provider := &fakeProvider{}
	svc := newService(store, provider)

	req := api.NewRecommendationRequest()
	req.Preferences.PreferredGenres = []string{"Dramas"}
	req.Preferences.IncludeTrailers = false
	req.Limit = 1

	resp, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.TotalCount < 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	top := resp.Recommendations[0]
	if top.Title.ID != "s1" || top.Score <= recommend.MinScore || top.Analysis == nil {
		t.Fatalf("unexpected top recommendation %+v", top)
	}
	if provider.searches != 0 {
		t.Fatal("trailer search issued although not requested")
	}
}

func TestRecommendRejectsInvertedYearRange(t *testing.T) {
	svc := newService(sampleStore(), &fakeProvider{})
	req := api.NewRecommendationRequest()
	req.Preferences.YearRange = &recommend.YearRange{From: 2020, To: 2010}
	if _, err := svc.Recommend(context.Background(), req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTitleLookups(t *testing.T) {
	related := &fakeRelated{configured: true}
	svc := newService(sampleStore(), &fakeProvider{}, func(d *api.Deps) { d.Videos = related })
	ctx := context.Background()

	if _, err := svc.Title(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	title, err := svc.Title(ctx, "s3")
	if err != nil || title.Director != "Dark Lord" {
		t.Fatalf("Title = %+v, %v", title, err)
	}

	res, err := svc.Analyze(ctx, "s3")
	if err != nil || res.Source != analysis.SourceHeuristic {
		t.Fatalf("Analyze = %+v, %v", res, err)
	}

	videos, err := svc.RelatedVideos(ctx, "s2", 0)
	if err != nil || len(videos) != 1 || related.query != "Dark" {
		t.Fatalf("RelatedVideos = %v, %v (query %q)", videos, err, related.query)
	}

	related.err = errors.New("quota")
	videos, err = svc.RelatedVideos(ctx, "s2", 0)
	if err != nil || len(videos) != 0 {
		t.Fatalf("failing provider should degrade, got %v, %v", videos, err)
	}
}

func TestStatsAndFill(t *testing.T) {
	store := sampleStore()
	svc := newService(store, &fakeProvider{hits: map[string]string{"Laugh Out": "laugh000001"}})

	stats := svc.Stats(context.Background())
	if stats.TotalTitles != 3 || stats.Movies != 2 || stats.TVShows != 1 || stats.MissingTrailers != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !stats.VideoProvider || stats.LanguageModel {
		t.Fatalf("unexpected integration flags %+v", stats)
	}

	report := svc.FillTrailers(context.Background(), 5)
	if report.Updated != 1 || report.Failed != 1 || report.MissingAfter != 1 {
		t.Fatalf("unexpected fill report %+v", report)
	}
}
