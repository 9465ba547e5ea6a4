// Package recommend ranks catalog titles against user preferences.
package recommend

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"cinesearch/internal/analysis"
	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
)

const (
	// MaxResults caps a ranking before any caller limit applies.
	MaxResults = 10
	// MinScore is the exclusive lower bound for a kept recommendation.
	MinScore = 0.3

	genreBonus  = 0.3
	yearBonus   = 0.2
	ratingBonus = 0.1

	recentContentYear = 2020
)

// YearRange is an inclusive release-year window.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to" validate:"gtefield=From"`
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// Preferences describes what the user is looking for.
type Preferences struct {
	PreferredGenres  []string   `json:"preferred_genres,omitempty"`
	YearRange        *YearRange `json:"year_range,omitempty"`
	PreferredRatings []string   `json:"preferred_ratings,omitempty"`
	IncludeTrailers  bool       `json:"include_trailers"`
	IncludeAnalysis  bool       `json:"include_analysis"`
}

// Recommendation is one ranked title.
type Recommendation struct {
	TitleID    string          `json:"title_id"`
	Title      string          `json:"title"`
	Score      float64         `json:"score"`
	Reason     string          `json:"reason"`
	GenreMatch []string        `json:"genre_match"`
	Analysis   analysis.Result `json:"-"`
}

// Analyzer is the subset of analysis.Analyzer the ranker needs.
type Analyzer interface {
	Analyze(ctx context.Context, t catalog.Title) analysis.Result
}

// Ranker scores candidates with the content analyzer and preference bonuses.
type Ranker struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewRanker constructs a Ranker.
func NewRanker(analyzer Analyzer, logger *slog.Logger) *Ranker {
	return &Ranker{
		analyzer: analyzer,
		logger:   logging.NewComponentLogger(logger, "recommend"),
	}
}

// Rank returns at most MaxResults recommendations scoring above MinScore,
// highest first with ties in candidate order. A positive limit truncates
// further.
func (r *Ranker) Rank(ctx context.Context, prefs Preferences, candidates []catalog.Title, limit int) []Recommendation {
	genres := toSet(prefs.PreferredGenres)
	ratings := toSet(prefs.PreferredRatings)

	out := make([]Recommendation, 0, MaxResults)
	for _, t := range candidates {
		res := r.analyzer.Analyze(ctx, t)
		score := res.RecommendationScore
		if matchesAny(res.GenrePrediction, genres) {
			score += genreBonus
		}
		if prefs.YearRange != nil && t.HasYear() && prefs.YearRange.Contains(t.ReleaseYear) {
			score += yearBonus
		}
		if _, ok := ratings[strings.TrimSpace(t.Rating)]; ok {
			score += ratingBonus
		}
		score = clamp01(score)
		if score <= MinScore {
			continue
		}
		out = append(out, Recommendation{
			TitleID:    t.ID,
			Title:      t.Name,
			Score:      score,
			Reason:     Reason(res, t),
			GenreMatch: res.GenrePrediction,
			Analysis:   res,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	metrics.RecommendationsTotal.Inc()
	r.logger.Debug("ranked candidates",
		logging.Int("candidates", len(candidates)),
		logging.Int("kept", len(out)),
	)
	return out
}

// Reason builds the human-readable justification for a recommendation.
func Reason(res analysis.Result, t catalog.Title) string {
	var parts []string
	switch {
	case res.SentimentScore > 0.7:
		parts = append(parts, "highly rated")
	case res.SentimentScore > 0.5:
		parts = append(parts, "well rated")
	}
	if len(res.GenrePrediction) > 0 {
		parts = append(parts, "Genre: "+strings.Join(res.GenrePrediction, ", "))
	}
	if t.HasYear() && t.ReleaseYear >= recentContentYear {
		parts = append(parts, "recent content")
	}
	if len(parts) == 0 {
		return "matches your preferences"
	}
	return strings.Join(parts, ". ")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func matchesAny(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
