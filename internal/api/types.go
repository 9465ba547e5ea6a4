package api

import (
	"cinesearch/internal/analysis"
	"cinesearch/internal/recommend"
	"cinesearch/internal/services/youtube"
	"cinesearch/internal/trailer"
)

// SearchRequest describes a catalog search.
type SearchRequest struct {
	Query           string `json:"query" validate:"min=2,max=100"`
	Scope           string `json:"search_type" validate:"omitempty,oneof=all title director cast description country listed_in"`
	Limit           int    `json:"limit" validate:"gte=0,lte=100"`
	IncludeTrailers bool   `json:"include_trailers"`
	IncludeAnalysis bool   `json:"include_analysis"`
	SmartQuery      bool   `json:"smart_query"`
}

// RecommendationRequest asks for personalised recommendations.
type RecommendationRequest struct {
	Preferences recommend.Preferences `json:"preferences"`
	Limit       int                   `json:"limit" validate:"gte=0,lte=100"`
}

// NewRecommendationRequest returns a request with trailers and analysis
// enabled, the defaults for callers that omit those flags.
func NewRecommendationRequest() RecommendationRequest {
	return RecommendationRequest{
		Preferences: recommend.Preferences{IncludeTrailers: true, IncludeAnalysis: true},
	}
}

// Title is the transport form of a catalog entry.
type Title struct {
	ID          string `json:"show_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Director    string `json:"director,omitempty"`
	Cast        string `json:"cast,omitempty"`
	Country     string `json:"country,omitempty"`
	DateAdded   string `json:"date_added,omitempty"`
	ReleaseYear int    `json:"release_year,omitempty"`
	Rating      string `json:"rating,omitempty"`
	Duration    string `json:"duration,omitempty"`
	ListedIn    string `json:"listed_in,omitempty"`
	Description string `json:"description,omitempty"`
	TrailerURL  string `json:"trailer_url,omitempty"`
}

// EnrichedTitle is a title with its optional trailer and analysis.
type EnrichedTitle struct {
	Title            Title              `json:"title"`
	Trailer          *youtube.VideoInfo `json:"trailer,omitempty"`
	TrailerOutcome   trailer.Outcome    `json:"trailer_outcome"`
	TrailerEmbedURL  string             `json:"trailer_embed_url,omitempty"`
	TrailerEmbedHTML string             `json:"trailer_embed_html,omitempty"`
	Analysis         *analysis.Result   `json:"analysis,omitempty"`
}

// SearchResponse carries ordered search results.
type SearchResponse struct {
	Results    []EnrichedTitle `json:"results"`
	TotalCount int             `json:"total_count"`
	Query      string          `json:"query"`
	Scope      string          `json:"search_type"`
	Refined    bool            `json:"refined"`
	RequestID  string          `json:"request_id"`
}

// Recommendation is a ranked, enriched title.
type Recommendation struct {
	EnrichedTitle
	Score      float64  `json:"score"`
	Reason     string   `json:"reason"`
	GenreMatch []string `json:"genre_match"`
}

// RecommendationResponse carries ranked recommendations. TotalCount is the
// number of titles that qualified before the request limit.
type RecommendationResponse struct {
	Recommendations []Recommendation      `json:"recommendations"`
	TotalCount      int                   `json:"total_count"`
	Preferences     recommend.Preferences `json:"user_preferences"`
	RequestID       string                `json:"request_id"`
}

// Stats describes the dataset and which optional integrations are active.
type Stats struct {
	TotalTitles     int  `json:"total_titles"`
	Movies          int  `json:"movies"`
	TVShows         int  `json:"tv_shows"`
	Countries       int  `json:"countries"`
	YearMin         int  `json:"year_min"`
	YearMax         int  `json:"year_max"`
	MissingTrailers int  `json:"missing_trailers"`
	VideoProvider   bool `json:"video_provider_configured"`
	LanguageModel   bool `json:"language_model_configured"`
}
