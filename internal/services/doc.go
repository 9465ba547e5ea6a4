// Package services defines shared utilities consumed by the catalog core and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp title identifiers, operation names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration, validation, not found, external, transient).
//
// Use these helpers when wiring new components so operational behaviour stays
// uniform across the search, analysis, and trailer paths.
package services
