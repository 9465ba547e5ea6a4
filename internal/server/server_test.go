package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinesearch/internal/api"
	"cinesearch/internal/catalog"
	"cinesearch/internal/server"
	"cinesearch/internal/services/youtube"
	"cinesearch/internal/trailer"
)

type stubProvider struct{}

func (stubProvider) Configured() bool { return true }

func (stubProvider) SearchTrailer(_ context.Context, title string, _ int) (*youtube.VideoInfo, error) {
	return &youtube.VideoInfo{ID: "trailer0001", Title: title + " Trailer"}, nil
}

func (stubProvider) VideoDetails(_ context.Context, id string) (*youtube.VideoInfo, error) {
	return &youtube.VideoInfo{ID: id}, nil
}

func newTestServer(t *testing.T, opts server.Options) *server.Server {
	t.Helper()
	store := catalog.NewStore([]catalog.Title{
		{ID: "s1", Type: "Movie", Name: "Dark Waters", Description: "A brilliant emotional drama", ListedIn: "Dramas", ReleaseYear: 2019},
		{ID: "s2", Type: "TV Show", Name: "Dark", Description: "A thrilling mystery", ListedIn: "TV Mysteries", ReleaseYear: 2017},
	}, nil)
	svc := api.NewService(api.Deps{
		Store:    store,
		Resolver: trailer.NewResolver(stubProvider{}, store, nil),
	})
	return server.New(svc, opts, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	w := do(t, h, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/search", `{"query":"dark","search_type":"title","include_trailers":true}`,
		map[string]string{"X-Request-ID": "req-123"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("request id not echoed, got %q", got)
	}
	var resp api.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RequestID != "req-123" {
		t.Fatalf("expected request id to reach the facade, got %q", resp.RequestID)
	}
	if resp.TotalCount != 2 {
		t.Fatalf("expected 2 results, got %d", resp.TotalCount)
	}
	if resp.Results[0].Trailer == nil || resp.Results[0].Trailer.ID != "trailer0001" {
		t.Fatalf("expected resolved trailer, got %+v", resp.Results[0])
	}
}

func TestSearchValidationError(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/search", `{"query":"d"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error.Code != "VALIDATION_ERROR" || body.Error.Details["field"] != "query" {
		t.Fatalf("unexpected error body %s", w.Body.String())
	}
}

func TestMalformedBody(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/search", `{"query":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRecommendationsDefaultIncludes(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/recommendations", `{"preferences":{"preferred_genres":["Drama"]}}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.RecommendationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Preferences.IncludeTrailers || !resp.Preferences.IncludeAnalysis {
		t.Fatalf("expected include flags to default on, got %+v", resp.Preferences)
	}
}

func TestRecommendationsRejectsInvertedYears(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	w := do(t, h, http.MethodPost, "/api/recommendations", `{"preferences":{"year_range":{"from":2020,"to":2010}}}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTitleRoutes(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()

	w := do(t, h, http.MethodGet, "/api/titles/s1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var title api.Title
	if err := json.Unmarshal(w.Body.Bytes(), &title); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if title.Title != "Dark Waters" {
		t.Fatalf("unexpected title %+v", title)
	}

	if w := do(t, h, http.MethodGet, "/api/titles/missing", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/titles/s2/analysis", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK for analysis, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/titles/s2/related?max=x", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad max, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/titles/s2/related", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"videos":[]`) {
		t.Fatalf("expected empty related list, got %d %s", w.Code, w.Body.String())
	}
}

func TestStatsAndFill(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()

	w := do(t, h, http.MethodPost, "/api/trailers/fill?limit=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var report trailer.FillReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Updated != 1 || report.Skipped != 1 || report.MissingBefore != 2 {
		t.Fatalf("unexpected fill report %+v", report)
	}

	w = do(t, h, http.MethodGet, "/api/stats", "", nil)
	var stats api.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.TotalTitles != 2 || stats.MissingTrailers != 1 || !stats.VideoProvider {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestBearerAuth(t *testing.T) {
	h := newTestServer(t, server.Options{Token: "s3cret"}).Handler()

	if w := do(t, h, http.MethodGet, "/api/stats", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/stats", "", map[string]string{"Authorization": "Bearer wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/stats", "", map[string]string{"Authorization": "Bearer s3cret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz should not require auth, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, server.Options{RateLimitRequests: 1, RateLimitWindow: time.Minute}).Handler()

	if w := do(t, h, http.MethodGet, "/api/stats", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/stats", "", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, server.Options{CORSAllowedOrigins: []string{"https://ui.example"}}).Handler()
	w := do(t, h, http.MethodOptions, "/api/search", "", map[string]string{
		"Origin":                        "https://ui.example",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ui.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, server.Options{}).Handler()
	do(t, h, http.MethodGet, "/api/stats", "", nil)
	w := do(t, h, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cinesearch_") {
		t.Fatal("expected cinesearch metrics in exposition")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := newTestServer(t, server.Options{ShutdownTimeout: time.Second})
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
