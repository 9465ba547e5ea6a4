// Package search matches queries against catalog titles by substring.
package search

import (
	"strings"

	"cinesearch/internal/catalog"
)

// ScopeAll matches a query against every searchable field.
const ScopeAll = "all"

// Source supplies titles in table order.
type Source interface {
	Each(fn func(catalog.Title) bool)
}

// Engine performs case-insensitive substring search over a Source.
type Engine struct {
	source Source
}

// NewEngine constructs an Engine over source.
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// ValidScope reports whether scope is "all" or a searchable field.
func ValidScope(scope string) bool {
	if strings.EqualFold(strings.TrimSpace(scope), ScopeAll) {
		return true
	}
	_, ok := catalog.ParseField(scope)
	return ok
}

// Search returns titles whose scoped fields contain query, preserving table
// order. An unknown scope yields no results. limit truncates after matching;
// zero or negative means unlimited.
func (e *Engine) Search(query, scope string, limit int) []catalog.Title {
	if e == nil || e.source == nil {
		return nil
	}
	fields, ok := scopeFields(scope)
	if !ok {
		return nil
	}
	needle := catalog.Fold(query)

	var out []catalog.Title
	e.source.Each(func(t catalog.Title) bool {
		if Matches(t, needle, fields) {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				return false
			}
		}
		return true
	})
	return out
}

// Matches reports whether any of fields contains the already folded needle.
func Matches(t catalog.Title, needle string, fields []catalog.Field) bool {
	for _, f := range fields {
		if strings.Contains(t.SearchText(f), needle) {
			return true
		}
	}
	return false
}

func scopeFields(scope string) ([]catalog.Field, bool) {
	trimmed := strings.TrimSpace(scope)
	if trimmed == "" || strings.EqualFold(trimmed, ScopeAll) {
		return catalog.SearchableFields, true
	}
	field, ok := catalog.ParseField(trimmed)
	if !ok {
		return nil, false
	}
	return []catalog.Field{field}, true
}
