// Package llm provides an OpenAI-compatible chat client that asks a language
// model for strict JSON.
//
// This package is used by:
//   - analysis: optional model override of the keyword heuristic
//   - refine: query normalization into keywords and structured filters
//
// # Configuration
//
// Requires api_key and model, optionally base_url, temperature, max_tokens,
// and timeout. Without an api key NewClient still succeeds but Available
// reports false and every call fails fast, so callers keep a single code path.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON payload.
// DecodeLLMJSON: decode a payload, tolerating code fences and surrounding prose.
//
// # Failure Handling
//
// Calls are single-shot. Transport errors, non-2xx statuses, and empty
// content are returned as errors tagged with services.ErrExternal (or
// services.ErrTimeout when the deadline expired). Callers treat every error
// as a soft failure and fall back to their deterministic path.
package llm
