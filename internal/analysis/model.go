package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cinesearch/internal/catalog"
	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/services/llm"
)

const analysisSystemPrompt = "You are an assistant that returns valid JSON only."

const analysisInstructions = `Analyze this title and return JSON with: sentiment (0..1), genres (short list), audience (text), warnings (list of keys), recommendation (0..1), critique (one short sentence).

Title: %s
Description: %s
Genres (dataset): %s
Year: %s
Rating: %s

Respond with JSON ONLY using exactly these keys: {sentiment, genres, audience, warnings, recommendation, critique}.`

var errInvalidPayload = errors.New("invalid analysis payload")

func buildAnalysisPrompt(t catalog.Title) string {
	year := ""
	if t.HasYear() {
		year = strconv.Itoa(t.ReleaseYear)
	}
	return fmt.Sprintf(analysisInstructions, t.Name, blankToEmpty(t.Description), blankToEmpty(t.ListedIn), year, blankToEmpty(t.Rating))
}

func (a *Analyzer) analyzeWithModel(ctx context.Context, t catalog.Title) (Result, bool) {
	logger := logging.WithContext(ctx, a.logger)
	content, err := a.model.CompleteJSON(ctx, analysisSystemPrompt, buildAnalysisPrompt(t))
	if err != nil {
		metrics.RecordLLMRequest("analysis", "error")
		logging.WarnWithContext(logger, "model analysis unavailable", "llm_analysis_failed",
			logging.String(logging.FieldTitleID, t.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check llm.api_key, llm.base_url, and provider status"),
			logging.String(logging.FieldImpact, "keyword heuristic used for this title"),
		)
		return Result{}, false
	}
	result, err := parseModelResult(content)
	if err != nil {
		metrics.RecordLLMRequest("analysis", "invalid")
		logging.WarnWithContext(logger, "model analysis rejected", "llm_analysis_invalid",
			logging.String(logging.FieldTitleID, t.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "model did not follow the JSON contract"),
			logging.String(logging.FieldImpact, "keyword heuristic used for this title"),
		)
		return Result{}, false
	}
	metrics.RecordLLMRequest("analysis", "ok")
	return result, true
}

// parseModelResult validates a model payload. Numbers are clamped to [0,1],
// genres truncated to three, and list items stringified.
func parseModelResult(content string) (Result, error) {
	var payload map[string]any
	if err := llm.DecodeLLMJSON(content, &payload); err != nil {
		return Result{}, err
	}
	if payload == nil {
		return Result{}, fmt.Errorf("%w: not an object", errInvalidPayload)
	}

	sentiment, err := numberField(payload, "sentiment", 0.5)
	if err != nil {
		return Result{}, err
	}
	recommendation, err := numberField(payload, "recommendation", sentiment)
	if err != nil {
		return Result{}, err
	}
	genres, err := listField(payload, "genres")
	if err != nil {
		return Result{}, err
	}
	if len(genres) > maxGenres {
		genres = genres[:maxGenres]
	}
	warnings, err := listField(payload, "warnings")
	if err != nil {
		return Result{}, err
	}

	audience := defaultAudience
	if raw, ok := payload["audience"]; ok && raw != nil {
		if text := strings.TrimSpace(fmt.Sprint(raw)); text != "" {
			audience = text
		}
	}
	critique := ""
	if raw, ok := payload["critique"]; ok && raw != nil {
		critique = strings.TrimSpace(fmt.Sprint(raw))
	}

	return Result{
		SentimentScore:      clamp01(sentiment),
		GenrePrediction:     genres,
		TargetAudience:      audience,
		ContentWarnings:     warnings,
		RecommendationScore: clamp01(recommendation),
		SimilarTitles:       []string{},
		Critique:            critique,
		Source:              SourceModel,
	}, nil
}

func numberField(payload map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	value, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want number", errInvalidPayload, key, raw)
	}
	return value, nil
}

func listField(payload map[string]any, key string) ([]string, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return []string{}, nil
	}
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		return []string{strings.TrimSpace(v)}, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, want list", errInvalidPayload, key, raw)
	}
}

func blankToEmpty(value string) string {
	if catalog.IsBlank(value) {
		return ""
	}
	return value
}
