package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes movies from series.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindUnknown Kind = ""
)

// ParseKind maps the catalog type column ("Movie", "TV Show") to a Kind.
func ParseKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies":
		return KindMovie
	case "tv show", "tv shows", "series", "tv":
		return KindSeries
	default:
		return KindUnknown
	}
}

// Field names a searchable column.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDirector    Field = "director"
	FieldCast        Field = "cast"
	FieldDescription Field = "description"
	FieldCountry     Field = "country"
	FieldListedIn    Field = "listed_in"
)

// SearchableFields lists every column a query can match, in the order "all"
// scope checks them.
var SearchableFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldListedIn,
	FieldDirector,
	FieldCast,
	FieldCountry,
}

// ParseField validates a scope name.
func ParseField(raw string) (Field, bool) {
	candidate := Field(strings.ToLower(strings.TrimSpace(raw)))
	for _, f := range SearchableFields {
		if f == candidate {
			return f, true
		}
	}
	return "", false
}

// Enrichment holds the mutable columns attached to a record.
type Enrichment struct {
	TrailerURL string
	Sentiment  *float64
	Score      *float64
	Critique   string
}

// HasTrailer reports whether a usable trailer URL is stored.
func (e Enrichment) HasTrailer() bool {
	return !IsBlank(e.TrailerURL)
}

// Title is a catalog entry. Values returned by the store are copies.
type Title struct {
	ID          string
	Kind        Kind
	Type        string
	Name        string
	Director    string
	Cast        string
	Country     string
	DateAdded   string
	ReleaseYear int // 0 when unknown
	Rating      string
	Duration    string
	ListedIn    string
	Description string

	Enrichment Enrichment

	folded map[Field]string
}

// SearchText returns the lower-cased value of a searchable column.
func (t Title) SearchText(f Field) string {
	if t.folded == nil {
		return Fold(t.raw(f))
	}
	return t.folded[f]
}

// Genres splits the listed_in column into trimmed genre names.
func (t Title) Genres() []string {
	return SplitList(t.ListedIn)
}

// HasYear reports whether the release year is known.
func (t Title) HasYear() bool {
	return t.ReleaseYear > 0
}

func (t Title) raw(f Field) string {
	switch f {
	case FieldTitle:
		return t.Name
	case FieldDirector:
		return t.Director
	case FieldCast:
		return t.Cast
	case FieldDescription:
		return t.Description
	case FieldCountry:
		return t.Country
	case FieldListedIn:
		return t.ListedIn
	default:
		return ""
	}
}

func (t *Title) fold() {
	t.folded = make(map[Field]string, len(SearchableFields))
	caser := cases.Lower(language.Und)
	for _, f := range SearchableFields {
		t.folded[f] = caser.String(t.raw(f))
	}
}

// Fold lower-cases s with Unicode-aware rules. It is used for both stored
// columns and incoming queries so the two always agree.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// IsBlank reports whether a cell is empty or holds the "nan" placeholder
// left by spreadsheet exports.
func IsBlank(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || strings.EqualFold(trimmed, "nan")
}

// SplitList splits a comma separated column, dropping blank entries.
func SplitList(value string) []string {
	if IsBlank(value) {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
