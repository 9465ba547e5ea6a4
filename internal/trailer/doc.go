// Package trailer resolves catalog titles to trailer videos.
//
// A stored trailer URL always wins: its id is extracted and, when the video
// provider is configured, expanded into full details. Otherwise the provider
// is searched and the first hit's watch URL is written back to the catalog
// only if the title still has no URL. Provider calls pass through a circuit
// breaker; an open breaker counts as a failed lookup. Nothing in this package
// returns an error to the caller; every path ends in an Outcome.
package trailer
