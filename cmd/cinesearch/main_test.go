package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cinesearch/internal/api"
	"cinesearch/internal/config"
	"cinesearch/internal/trailer"
)

const testCatalog = `show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
s1,Movie,Dark Waters,Todd Haynes,Mark Ruffalo,United States,,2019,PG-13,127 min,Dramas,A brilliant and emotional legal drama
s2,TV Show,Dark,,Louis Hofmann,Germany,,2017,TV-MA,3 Seasons,"International TV Shows, TV Mysteries",A thrilling mystery with murder and violence
s3,Movie,Laugh Out,Dark Lord,,United States,,2005,PG,90 min,Comedies,A hilarious comedy
`

type cliTestEnv struct {
	configPath string
	dataPath   string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"YOUTUBE_API_KEY", "LLM_API_KEY", "GROQ_API_KEY", "GROQ_MODEL", "CINESEARCH_DATA_FILE", "CINESEARCH_API_TOKEN"} {
		t.Setenv(key, "")
	}
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	dataPath := filepath.Join(base, "titles.csv")
	if err := os.WriteFile(dataPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\ndata_file = %q\nlog_dir = %q\n\n[video_cache]\nenabled = false\n\n[logging]\nlevel = \"error\"\n",
		dataPath, filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, dataPath: dataPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSearchCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "dark", "--type", "title", "--analysis", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var resp api.SearchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if resp.TotalCount != 2 || resp.Scope != "title" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Results[0].Analysis == nil {
		t.Fatal("expected analysis in results")
	}
	if resp.Results[0].TrailerOutcome != trailer.OutcomeUnavailable {
		t.Fatalf("expected unavailable trailer without provider, got %s", resp.Results[0].TrailerOutcome)
	}
}

func TestSearchCommandPersistsAnalysis(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"search", "comedy", "--analysis", "--json"}, env.configPath); err != nil {
		t.Fatalf("search: %v", err)
	}
	data, err := os.ReadFile(env.dataPath)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	header, _, _ := strings.Cut(string(data), "\n")
	if !strings.Contains(header, "trailer_url") || !strings.Contains(header, "sentiment_llm") {
		t.Fatalf("expected enrichment columns after flush, got header %q", header)
	}
}

func TestSearchCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "comedy"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Laugh Out") || !strings.Contains(out, "1 result(s)") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestSearchCommandRejectsShortQuery(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"search", "x"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "query") {
		t.Fatalf("expected validation error about query, got %v", err)
	}
}

func TestRecommendCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recommend", "--genre", "Drama", "--from", "2015", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var resp api.RecommendationResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if resp.Preferences.YearRange == nil || resp.Preferences.YearRange.From != 2015 {
		t.Fatalf("year range not applied: %+v", resp.Preferences)
	}
	for _, rec := range resp.Recommendations {
		if rec.Score <= 0.3 {
			t.Fatalf("recommendation below threshold: %+v", rec)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"analyze", "s2"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Audience") || !strings.Contains(out, "Adults") {
		t.Fatalf("unexpected analysis output:\n%s", out)
	}

	if _, _, err := runCLI(t, []string{"analyze", "nope"}, env.configPath); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestTrailersFillWithoutProvider(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"trailers", "fill", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("trailers fill: %v", err)
	}
	var report trailer.FillReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if report.Message != "youtube api key not configured" || report.MissingBefore != 3 || report.Updated != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	out, _, err = runCLI(t, []string{"trailers", "related", "s1"}, env.configPath)
	if err != nil {
		t.Fatalf("trailers related: %v", err)
	}
	if !strings.Contains(out, "No related videos") {
		t.Fatalf("unexpected related output:\n%s", out)
	}
}

func TestStatsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats api.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if stats.TotalTitles != 3 || stats.Movies != 2 || stats.TVShows != 1 || stats.Countries != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.YearMin != 2005 || stats.YearMax != 2019 || stats.VideoProvider || stats.LanguageModel {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestMissingDataFile(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(env.dataPath); err != nil {
		t.Fatalf("remove catalog: %v", err)
	}
	if _, _, err := runCLI(t, []string{"stats"}, env.configPath); err == nil || !strings.Contains(err.Error(), "data file not found") {
		t.Fatalf("expected missing data file error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "generated", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected target path in output:\n%s", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output:\n%s", out)
	}
}

func TestProviderHTTPClientsUseConfiguredTimeouts(t *testing.T) {
	cfg := config.Default()
	cfg.YouTube.TimeoutSeconds = 7
	cfg.LLM.TimeoutSeconds = 45

	video, model := providerHTTPClients(&cfg)
	if video.Timeout != 7*time.Second {
		t.Fatalf("expected video timeout 7s, got %s", video.Timeout)
	}
	if model.Timeout != 45*time.Second {
		t.Fatalf("expected model timeout 45s, got %s", model.Timeout)
	}
}
