// Package server exposes the cinesearch API facade over HTTP.
//
// Routes are served by a chi router. JSON endpoints live under /api and share
// request id propagation, optional bearer authentication, per-IP rate limiting
// and request metrics; /healthz and /metrics bypass authentication.
package server
