// Package refine narrows search results with a language-model rewrite of
// the user's query.
//
// The model corrects typos, translates the query into English keywords and
// infers structured filters. Every term must then match the title,
// description or genre list of a candidate. Without a model, or on any
// failure, the candidates pass through unchanged.
package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/services/llm"
)

const refineSystemPrompt = "You are an assistant that returns valid JSON only."

const refineInstructions = `The user typed a movie or series query, possibly in another language and possibly with typos. Return ONLY JSON with: normalized_query_en, keywords_en (list), inferred_filters {genres, countries, type, year_range}, corrected_entities {titles, actors, directors}, notes (short).
Query: %s`

// Rewrite is the structured query the model returns.
type Rewrite struct {
	NormalizedQuery string   `json:"normalized_query_en"`
	Keywords        []string `json:"keywords_en"`
	Filters         Filters  `json:"inferred_filters"`
	Entities        Entities `json:"corrected_entities"`
	Notes           string   `json:"notes"`
}

// Filters are structured constraints inferred from the query. Genres and
// countries are informational; only type and year range restrict results.
type Filters struct {
	Genres    []string `json:"genres"`
	Countries []string `json:"countries"`
	Type      string   `json:"type"`
	YearRange []int    `json:"year_range"`
}

// Entities are corrected names mentioned in the query.
type Entities struct {
	Titles    []string `json:"titles"`
	Actors    []string `json:"actors"`
	Directors []string `json:"directors"`
}

// Refiner applies model rewrites to candidate lists.
type Refiner struct {
	model  llm.Completer
	logger *slog.Logger
}

// New constructs a Refiner. A nil model makes Refine a passthrough.
func New(model llm.Completer, logger *slog.Logger) *Refiner {
	if model == nil {
		model = llm.Nop{}
	}
	return &Refiner{model: model, logger: logging.NewComponentLogger(logger, "refine")}
}

// Available reports whether refinement can change results.
func (r *Refiner) Available() bool {
	return r.model.Available()
}

// Refine filters candidates by the rewritten query. The second result reports
// whether the filter was applied; when false the input slice is returned.
func (r *Refiner) Refine(ctx context.Context, query string, candidates []catalog.Title) ([]catalog.Title, bool) {
	if !r.model.Available() {
		return candidates, false
	}
	logger := logging.WithContext(ctx, r.logger)

	content, err := r.model.CompleteJSON(ctx, refineSystemPrompt, fmt.Sprintf(refineInstructions, query))
	if err != nil {
		metrics.RecordLLMRequest("refine", "error")
		logging.WarnWithContext(logger, "query rewrite unavailable", "llm_refine_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "unrefined results returned"),
		)
		return candidates, false
	}
	var rewrite Rewrite
	if err := llm.DecodeLLMJSON(content, &rewrite); err != nil {
		metrics.RecordLLMRequest("refine", "invalid")
		logging.WarnWithContext(logger, "query rewrite rejected", "llm_refine_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "model did not follow the JSON contract"),
			logging.String(logging.FieldImpact, "unrefined results returned"),
		)
		return candidates, false
	}
	metrics.RecordLLMRequest("refine", "ok")

	filter := newFilter(rewrite)
	out := make([]catalog.Title, 0, len(candidates))
	for _, t := range candidates {
		if filter.match(t) {
			out = append(out, t)
		}
	}
	logger.Debug("query refined",
		logging.String("normalized_query", filter.query),
		logging.Int("keywords", len(filter.keywords)),
		logging.Int("before", len(candidates)),
		logging.Int("after", len(out)),
	)
	return out, true
}

type filter struct {
	query     string
	keywords  []string
	titles    []string
	actors    []string
	directors []string
	kind      string
	years     []int
}

func newFilter(rw Rewrite) filter {
	return filter{
		query:     catalog.Fold(strings.TrimSpace(rw.NormalizedQuery)),
		keywords:  foldAll(rw.Keywords),
		titles:    foldAll(rw.Entities.Titles),
		actors:    foldAll(rw.Entities.Actors),
		directors: foldAll(rw.Entities.Directors),
		kind:      catalog.Fold(strings.TrimSpace(rw.Filters.Type)),
		years:     rw.Filters.YearRange,
	}
}

var termFields = []catalog.Field{catalog.FieldTitle, catalog.FieldDescription, catalog.FieldListedIn}

func (f filter) match(t catalog.Title) bool {
	if f.query != "" && !matchesTerm(t, f.query) {
		return false
	}
	for _, kw := range f.keywords {
		if !matchesTerm(t, kw) {
			return false
		}
	}
	if len(f.titles) > 0 && !containsAny(t.SearchText(catalog.FieldTitle), f.titles) {
		return false
	}
	if len(f.actors) > 0 && !containsAny(t.SearchText(catalog.FieldCast), f.actors) {
		return false
	}
	if len(f.directors) > 0 && !containsAny(t.SearchText(catalog.FieldDirector), f.directors) {
		return false
	}
	if len(f.years) == 2 && (!t.HasYear() || t.ReleaseYear < f.years[0] || t.ReleaseYear > f.years[1]) {
		return false
	}
	if f.kind != "" && catalog.Fold(strings.TrimSpace(t.Type)) != f.kind {
		return false
	}
	return true
}

func matchesTerm(t catalog.Title, term string) bool {
	for _, field := range termFields {
		if strings.Contains(t.SearchText(field), term) {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, catalog.Fold(v))
	}
	return out
}
