// Package analysis scores catalog titles.
//
// The deterministic path counts keyword hits from fixed lexicons to produce
// sentiment, genre predictions, audience, content warnings, a recommendation
// score, and a static list of similar titles. When a language model is
// available the analyzer asks it for the same fields first; a valid answer
// replaces the heuristic result entirely, any failure falls through to the
// heuristic without a trace in the returned value.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/services/llm"
)

// Source records which path produced a Result.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceModel     Source = "model"
	SourceFallback  Source = "fallback"
)

// DefaultReferenceYear anchors the recency bonus when none is configured.
const DefaultReferenceYear = 2024

// Result is the analysis of one title.
type Result struct {
	SentimentScore      float64  `json:"sentiment_score"`
	GenrePrediction     []string `json:"genre_prediction"`
	TargetAudience      string   `json:"target_audience"`
	ContentWarnings     []string `json:"content_warnings"`
	RecommendationScore float64  `json:"recommendation_score"`
	SimilarTitles       []string `json:"similar_titles"`
	Critique            string   `json:"critique,omitempty"`
	Source              Source   `json:"source"`
}

// Fallback is returned when analysis fails internally.
func Fallback() Result {
	return Result{
		SentimentScore:      0,
		GenrePrediction:     []string{},
		TargetAudience:      defaultAudience,
		ContentWarnings:     []string{},
		RecommendationScore: 0,
		SimilarTitles:       []string{},
		Source:              SourceFallback,
	}
}

// Analyzer analyzes titles, preferring the language model when available.
type Analyzer struct {
	model         llm.Completer
	logger        *slog.Logger
	referenceYear int
}

// Option customizes the analyzer.
type Option func(*Analyzer)

// WithReferenceYear overrides the year used for the recency bonus.
func WithReferenceYear(year int) Option {
	return func(a *Analyzer) {
		if year > 0 {
			a.referenceYear = year
		}
	}
}

// WithLogger sets the analyzer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New constructs an Analyzer. A nil model behaves like an unconfigured one.
func New(model llm.Completer, opts ...Option) *Analyzer {
	a := &Analyzer{model: model, referenceYear: DefaultReferenceYear}
	for _, opt := range opts {
		opt(a)
	}
	if a.model == nil {
		a.model = llm.Nop{}
	}
	a.logger = logging.NewComponentLogger(a.logger, "analysis")
	return a
}

// ReferenceYear returns the configured recency anchor.
func (a *Analyzer) ReferenceYear() int {
	return a.referenceYear
}

// Analyze never fails: a model failure yields the heuristic result and an
// internal panic yields Fallback.
func (a *Analyzer) Analyze(ctx context.Context, t catalog.Title) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logging.WithContext(ctx, a.logger), "content analysis failed", "analysis_panic",
				logging.String(logging.FieldTitleID, t.ID),
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldErrorHint, "report the title that triggered the failure"),
			)
			result = Fallback()
		}
		metrics.AnalysesTotal.WithLabelValues(string(result.Source)).Inc()
	}()

	if a.model.Available() {
		if modelResult, ok := a.analyzeWithModel(ctx, t); ok {
			return modelResult
		}
	}
	return Heuristic(t, a.referenceYear)
}
