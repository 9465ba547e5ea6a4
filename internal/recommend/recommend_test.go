package recommend

import (
	"context"
	"fmt"
	"testing"

	"cinesearch/internal/analysis"
	"cinesearch/internal/catalog"
)

type stubAnalyzer map[string]analysis.Result

func (s stubAnalyzer) Analyze(_ context.Context, t catalog.Title) analysis.Result {
	return s[t.ID]
}

func result(sentiment, score float64, genres ...string) analysis.Result {
	if genres == nil {
		genres = []string{}
	}
	return analysis.Result{SentimentScore: sentiment, RecommendationScore: score, GenrePrediction: genres}
}

func TestRankAppliesPreferenceBonuses(t *testing.T) {
	candidates := []catalog.Title{
		{ID: "a", Name: "A", ReleaseYear: 2015, Rating: "TV-MA"},
		{ID: "b", Name: "B", ReleaseYear: 2001, Rating: "PG"},
		{ID: "c", Name: "C", ReleaseYear: 2021, Rating: "R"},
	}
	stub := stubAnalyzer{
		"a": result(0.5, 0.3, "Dramas"),
		"b": result(0.5, 0.25),
		"c": result(0.9, 0.15, "Comedies"),
	}
	prefs := Preferences{
		PreferredGenres:  []string{"Dramas"},
		YearRange:        &YearRange{From: 2010, To: 2020},
		PreferredRatings: []string{"TV-MA", "R"},
	}

	got := NewRanker(stub, nil).Rank(context.Background(), prefs, candidates, 0)
	if len(got) != 1 {
		t.Fatalf("expected one recommendation, got %+v", got)
	}
	if got[0].TitleID != "a" || got[0].Score < 0.899 || got[0].Score > 0.901 {
		t.Fatalf("unexpected top recommendation %+v", got[0])
	}
	if got[0].Reason != "Genre: Dramas" {
		t.Fatalf("reason = %q", got[0].Reason)
	}
}

func TestRankGenreBonusIsAtLeastPointThree(t *testing.T) {
	title := catalog.Title{ID: "d", Name: "Drama", ReleaseYear: 1990}
	base := result(0.6, 0.34, "Thrillers", "Dramas")
	got := NewRanker(stubAnalyzer{"d": base}, nil).Rank(context.Background(), Preferences{PreferredGenres: []string{"Dramas"}}, []catalog.Title{title}, 0)
	if len(got) != 1 {
		t.Fatalf("expected recommendation, got %+v", got)
	}
	if got[0].Score < base.RecommendationScore+0.3-1e-9 {
		t.Fatalf("score %v not boosted from %v", got[0].Score, base.RecommendationScore)
	}
	if got[0].Reason != "well rated. Genre: Thrillers, Dramas" {
		t.Fatalf("reason = %q", got[0].Reason)
	}
}

func TestRankThresholdIsStrict(t *testing.T) {
	candidates := []catalog.Title{{ID: "x"}, {ID: "y"}}
	stub := stubAnalyzer{"x": result(0.5, 0.3), "y": result(0.5, 0.31)}
	got := NewRanker(stub, nil).Rank(context.Background(), Preferences{}, candidates, 0)
	if len(got) != 1 || got[0].TitleID != "y" {
		t.Fatalf("expected only y, got %+v", got)
	}
}

func TestRankCapsAndKeepsStableOrder(t *testing.T) {
	stub := stubAnalyzer{}
	var candidates []catalog.Title
	for i := range 15 {
		id := fmt.Sprintf("t%02d", i)
		candidates = append(candidates, catalog.Title{ID: id})
		score := 0.5
		if i == 14 {
			score = 0.8
		}
		stub[id] = result(0.5, score)
	}

	got := NewRanker(stub, nil).Rank(context.Background(), Preferences{}, candidates, 0)
	if len(got) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(got))
	}
	if got[0].TitleID != "t14" {
		t.Fatalf("highest score should lead, got %s", got[0].TitleID)
	}
	for i := 1; i < len(got); i++ {
		if want := fmt.Sprintf("t%02d", i-1); got[i].TitleID != want {
			t.Fatalf("position %d = %s, want %s", i, got[i].TitleID, want)
		}
		if got[i].Score <= MinScore {
			t.Fatalf("score %v not above threshold", got[i].Score)
		}
	}

	limited := NewRanker(stub, nil).Rank(context.Background(), Preferences{}, candidates, 3)
	if len(limited) != 3 {
		t.Fatalf("limit not applied: %d", len(limited))
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		name  string
		res   analysis.Result
		title catalog.Title
		want  string
	}{
		{"default", result(0.5, 0), catalog.Title{ReleaseYear: 2010}, "matches your preferences"},
		{"highly rated", result(0.71, 0), catalog.Title{}, "highly rated"},
		{"well rated boundary", result(0.7, 0), catalog.Title{}, "well rated"},
		{"all", result(0.9, 0, "Dramas", "Comedies"), catalog.Title{ReleaseYear: 2020}, "highly rated. Genre: Dramas, Comedies. recent content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.res, tt.title); got != tt.want {
				t.Fatalf("Reason = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRankWithHeuristicAnalyzer(t *testing.T) {
	analyzer := analysis.New(nil)
	candidates := []catalog.Title{
		{ID: "s1", Name: "Great Drama", Description: "an emotional, brilliant drama", ListedIn: "Dramas", ReleaseYear: 2021, Rating: "TV-MA"},
		{ID: "s2", Name: "Plain", Description: "", ReleaseYear: 1980},
	}
	got := NewRanker(analyzer, nil).Rank(context.Background(), Preferences{PreferredGenres: []string{"Dramas"}}, candidates, 0)
	if len(got) != 1 || got[0].TitleID != "s1" {
		t.Fatalf("unexpected ranking %+v", got)
	}
	if got[0].Score != 1 {
		t.Fatalf("expected clamped score 1, got %v", got[0].Score)
	}
}
