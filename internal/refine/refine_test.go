package refine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cinesearch/internal/catalog"
)

type stubModel struct {
	available bool
	content   string
	err       error
}

func (s stubModel) Available() bool { return s.available }

func (s stubModel) CompleteJSON(context.Context, string, string) (string, error) {
	return s.content, s.err
}

func candidates() []catalog.Title {
	return []catalog.Title{
		{ID: "1", Type: "Movie", Name: "The Haunting", Description: "A scary house", ListedIn: "Horror Movies", ReleaseYear: 1999, Cast: "Liam Neeson"},
		{ID: "2", Type: "TV Show", Name: "Haunting of Hill House", Description: "Family horror", ListedIn: "TV Horror", ReleaseYear: 2018, Director: "Mike Flanagan"},
		{ID: "3", Type: "Movie", Name: "Comedy Night", Description: "Stand-up", ListedIn: "Stand-Up Comedy", ReleaseYear: 2019},
		{ID: "4", Type: "Movie", Name: "Untimed Horror", Description: "horror", ListedIn: "Horror Movies"},
	}
}

func ids(titles []catalog.Title) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		out = append(out, t.ID)
	}
	return out
}

func TestRefinePassthrough(t *testing.T) {
	in := candidates()
	tests := []struct {
		name  string
		model stubModel
	}{
		{"unavailable", stubModel{}},
		{"error", stubModel{available: true, err: errors.New("timeout")}},
		{"bad json", stubModel{available: true, content: "sorry, I cannot help"}},
		{"wrong types", stubModel{available: true, content: `{"keywords_en": "horror"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := New(tt.model, nil).Refine(context.Background(), "orror", in)
			if applied {
				t.Fatal("refinement should not apply")
			}
			if !reflect.DeepEqual(got, in) {
				t.Fatalf("candidates changed: %v", ids(got))
			}
		})
	}
	if _, applied := New(nil, nil).Refine(context.Background(), "x", in); applied {
		t.Fatal("nil model should pass through")
	}
}

func TestRefineFilters(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{"normalized query", `{"normalized_query_en": "Horror"}`, []string{"1", "2", "4"}},
		{"keywords are conjunctive", `{"keywords_en": ["horror", "family"]}`, []string{"2"}},
		{"year range", `{"normalized_query_en": "horror", "inferred_filters": {"year_range": [1990, 2000]}}`, []string{"1"}},
		{"type", `{"keywords_en": ["haunting"], "inferred_filters": {"type": "tv show"}}`, []string{"2"}},
		{"actor", `{"corrected_entities": {"actors": ["liam neeson"]}}`, []string{"1"}},
		{"director", `{"corrected_entities": {"directors": ["Flanagan"]}}`, []string{"2"}},
		{"title", `{"corrected_entities": {"titles": ["comedy night", "nothing"]}}`, []string{"3"}},
		{"empty rewrite keeps all", `{}`, []string{"1", "2", "3", "4"}},
		{"fenced", "```json\n{\"keywords_en\": [\"stand-up\"]}\n```", []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := stubModel{available: true, content: tt.payload}
			got, applied := New(model, nil).Refine(context.Background(), "query", candidates())
			if !applied {
				t.Fatal("expected refinement to apply")
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Fatalf("ids = %v, want %v", ids(got), tt.want)
			}
		})
	}
}
