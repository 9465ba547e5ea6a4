// Package api is the request/response facade over the catalog, search,
// analysis, recommendation and trailer packages. Both the CLI and the HTTP
// server call it.
//
// Requests are validated before any work starts; that is the only error the
// search and recommendation paths return. Everything after validation
// degrades instead of failing: a trailer lookup that errors leaves the result
// without a trailer, a model failure falls back to heuristic analysis, and a
// catalog flush failure is logged while the in-memory store stays
// authoritative.
//
// DTOs use snake_case JSON tags, matching the dataset column names.
package api
