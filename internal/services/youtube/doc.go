// Package youtube wraps the YouTube Data API v3 endpoints used to find
// trailers and related videos.
//
// Every request is rate limited and recorded in the provider metrics. A client
// without an API key reports Configured() == false; callers treat that as "no
// trailer" rather than as an error.
package youtube
