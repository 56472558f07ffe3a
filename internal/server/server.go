package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// The package provides [Logging], [Recover] and [CORS].
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows its own routes, so one value can serve several related paths
// (e.g. /progress and /progress/stream).
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers behind a shared middleware stack.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
