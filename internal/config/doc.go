// Package config loads, normalizes, and validates cinesearch configuration.
//
// It merges TOML files with built-in defaults, expands user paths, applies
// environment fallbacks for provider credentials, and exposes helpers for
// creating the sample configuration. Missing provider credentials are never an
// error: the features that depend on them degrade quietly instead.
package config
