// Package server provides HTTP routing, middleware, and the JSON handlers for the catalog and library services.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns.
// Requests that match no pattern, including a known path with the wrong method, get a 404 envelope.
//
// [NewRouter] installs the stack both services share: [Recoverer], [RequestLogger], [CORS] and [RateLimit].
//
// # Response Envelope
//
// Every endpoint except /health answers with an [Envelope]:
//
//	{"sucesso": true, "mensagem": "...", "dados": ..., "timestamp": "2025-01-01T00:00:00Z"}
//
// Failures set sucesso to false, leave dados null and may carry the underlying error in erro.
// Domain errors map to status codes: invalid input is 400, a missing track or playlist is 404,
// and anything else is 500.
//
// # Handlers
//
// [CatalogHandler] serves /musicas and the /cache endpoints of the metadata service.
// [PlaylistHandler] serves /playlist for the library service. Reading a single playlist resolves its
// tracks through the catalog; tracks that cannot be resolved come back as placeholders so the read
// still succeeds.
//
// [HealthHandler] answers /health with a bare [HealthReport]. The library service adds the catalog's
// reachability to it.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// Handlers dispatch on [http.Request.Pattern].
package server
