package api

import (
	"cinesearch/internal/catalog"
)

// FromTitle converts a catalog title to its API representation. Blank
// placeholder cells become empty strings.
func FromTitle(t catalog.Title) Title {
	return Title{
		ID:          t.ID,
		Type:        clean(t.Type),
		Title:       t.Name,
		Director:    clean(t.Director),
		Cast:        clean(t.Cast),
		Country:     clean(t.Country),
		DateAdded:   clean(t.DateAdded),
		ReleaseYear: t.ReleaseYear,
		Rating:      clean(t.Rating),
		Duration:    clean(t.Duration),
		ListedIn:    clean(t.ListedIn),
		Description: clean(t.Description),
		TrailerURL:  clean(t.Enrichment.TrailerURL),
	}
}

func clean(value string) string {
	if catalog.IsBlank(value) {
		return ""
	}
	return value
}
