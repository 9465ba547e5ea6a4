// Package main hosts the cinesearch CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration and the catalog once per
// invocation, wires the optional video and language-model providers, and
// renders facade responses either as tables or as JSON. The serve command
// exposes the same facade over HTTP.
//
// Keep this package thin: behaviour belongs in the internal packages, and
// commands here only translate flags into facade requests.
package main
