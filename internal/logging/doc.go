// Package logging assembles structured slog loggers and formatting helpers used
// across cinesearch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing (including the optional rotated log file), and exposes
// context-aware helpers so request handling code can tag log lines with title
// identifiers, operations, and correlation IDs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
