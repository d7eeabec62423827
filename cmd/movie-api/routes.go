package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Sternrassler/omdb-catalog/pkg/metrics"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/list", app.listMoviesHandler)
	router.HandlerFunc(http.MethodGet, "/single", app.showMovieHandler)
	router.HandlerFunc(http.MethodPost, "/add", app.addMovieHandler)
	router.HandlerFunc(http.MethodDelete, "/remove", app.requireAuth(app.removeMovieHandler))

	router.HandlerFunc(http.MethodPost, "/signup", app.signupHandler)
	router.HandlerFunc(http.MethodPost, "/token", app.tokenHandler)

	router.HandlerFunc(http.MethodGet, "/healthz", app.healthHandler)
	router.HandlerFunc(http.MethodGet, "/readyz", app.readyHandler)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	return app.instrument(app.recoverPanic(app.rateLimit(router)))
}

// knownRoutes bounds the route label cardinality.
var knownRoutes = map[string]bool{
	"/list":    true,
	"/single":  true,
	"/add":     true,
	"/remove":  true,
	"/signup":  true,
	"/token":   true,
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

func routeLabel(r *http.Request) string {
	if knownRoutes[r.URL.Path] {
		return r.URL.Path
	}
	return "unmatched"
}
