package catalog

import "strings"

// Stats summarizes the catalog.
type Stats struct {
	Total           int `json:"total_titles"`
	Movies          int `json:"movies"`
	TVShows         int `json:"tv_shows"`
	Countries       int `json:"countries"`
	YearMin         int `json:"year_min"`
	YearMax         int `json:"year_max"`
	MissingTrailers int `json:"missing_trailers"`
}

// Stats computes dataset counts. Countries counts distinct non-blank country
// cells; YearMin and YearMax are zero when no title has a known year.
func (s *Store) Stats() Stats {
	var stats Stats
	countries := make(map[string]struct{})
	s.Each(func(t Title) bool {
		stats.Total++
		switch t.Kind {
		case KindMovie:
			stats.Movies++
		case KindSeries:
			stats.TVShows++
		}
		if !IsBlank(t.Country) {
			countries[strings.TrimSpace(t.Country)] = struct{}{}
		}
		if t.HasYear() {
			if stats.YearMin == 0 || t.ReleaseYear < stats.YearMin {
				stats.YearMin = t.ReleaseYear
			}
			if t.ReleaseYear > stats.YearMax {
				stats.YearMax = t.ReleaseYear
			}
		}
		if !t.Enrichment.HasTrailer() {
			stats.MissingTrailers++
		}
		return true
	})
	stats.Countries = len(countries)
	return stats
}
