// Package httpserver wraps net/http with graceful shutdown, signal handling,
// and probe handlers so the entrypoint stays small.
package httpserver
