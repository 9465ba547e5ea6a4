package analysis

import (
	"sort"
	"strings"

	"cinesearch/internal/catalog"
)

const (
	sentimentWeight   = 0.4
	popularGenreBonus = 0.1
	recentBonus       = 0.2
	decadeBonus       = 0.1
	maxGenres         = 3
	maxSimilarTitles  = 3
)

// Heuristic computes the deterministic keyword analysis of t. referenceYear
// anchors the recency bonus.
func Heuristic(t catalog.Title, referenceYear int) Result {
	text := analysisText(t)
	sentiment := Sentiment(text)
	genres := PredictGenres(text)
	return Result{
		SentimentScore:      sentiment,
		GenrePrediction:     genres,
		TargetAudience:      Audience(t.Rating),
		ContentWarnings:     ContentWarnings(text),
		RecommendationScore: RecommendationScore(sentiment, genres, t.ReleaseYear, referenceYear),
		SimilarTitles:       SimilarTitles(t.ListedIn),
		Source:              SourceHeuristic,
	}
}

func analysisText(t catalog.Title) string {
	parts := []string{t.Name, t.Description, t.ListedIn}
	for i, p := range parts {
		if catalog.IsBlank(p) {
			parts[i] = ""
		}
	}
	return catalog.Fold(strings.Join(parts, " "))
}

// countHits counts how many keywords occur in text; each keyword counts once.
func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// Sentiment scores lower-cased text in [0,1]. Text without any lexicon hit
// is neutral (0.5).
func Sentiment(text string) float64 {
	positive := countHits(text, positiveWords)
	negative := countHits(text, negativeWords)
	neutral := countHits(text, neutralWords)
	total := positive + negative + neutral
	if total == 0 {
		return 0.5
	}
	score := float64(positive-negative) / float64(total)
	return clamp01((score + 1) / 2)
}

// PredictGenres returns up to three genre categories ordered by hit count,
// ties kept in lexicon order.
func PredictGenres(text string) []string {
	type scored struct {
		name string
		hits int
	}
	var matches []scored
	for _, g := range genreLexicon {
		if hits := countHits(text, g.keywords); hits > 0 {
			matches = append(matches, scored{g.name, hits})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].hits > matches[j].hits
	})
	if len(matches) > maxGenres {
		matches = matches[:maxGenres]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}

// Audience maps a rating to an audience label.
func Audience(rating string) string {
	if label, ok := audienceByRating[strings.TrimSpace(rating)]; ok {
		return label
	}
	return defaultAudience
}

// ContentWarnings returns the warning categories with any keyword in text.
func ContentWarnings(text string) []string {
	out := []string{}
	for _, w := range warningLexicon {
		if countHits(text, w.keywords) > 0 {
			out = append(out, w.name)
		}
	}
	return out
}

// RecommendationScore combines sentiment, popular genres, and recency.
func RecommendationScore(sentiment float64, genres []string, releaseYear, referenceYear int) float64 {
	score := sentiment * sentimentWeight
	for _, g := range genres {
		if _, ok := popularGenres[g]; ok {
			score += popularGenreBonus
		}
	}
	if releaseYear > 0 {
		switch {
		case releaseYear >= referenceYear-5:
			score += recentBonus
		case releaseYear >= referenceYear-10:
			score += decadeBonus
		}
	}
	return clamp01(score)
}

// SimilarTitles returns a fixed list keyed by genre markers in listedIn.
func SimilarTitles(listedIn string) []string {
	out := []string{}
	if catalog.IsBlank(listedIn) {
		return out
	}
	for _, entry := range similarByGenre {
		if strings.Contains(listedIn, entry.marker) {
			out = append(out, entry.titles...)
		}
	}
	if len(out) > maxSimilarTitles {
		out = out[:maxSimilarTitles]
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
