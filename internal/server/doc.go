// Package server exposes a running download over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging], [Recover] and [CORS] are the stock middleware.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
// [NewProgressRouter] wires the handlers used by `favdl download --serve`:
//   - GET / lists the registered endpoints
//   - GET /health reports liveness
//   - GET /progress returns the shared [tasks.Progress] counter as JSON
//   - GET /progress/stream pushes the counter as server-sent events until the run is done
//   - GET /runs lists recent runs from the download history
//
// The progress handle is read-only here. The engine remains its only writer.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
