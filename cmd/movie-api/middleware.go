package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/Sternrassler/omdb-catalog/pkg/auth"
	"github.com/Sternrassler/omdb-catalog/pkg/metrics"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit applies one token bucket to all requests. A nil limiter disables
// the check.
func (app *application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.limiter != nil && !app.limiter.Allow() {
			app.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request metrics and writes one access log line per
// request.
func (app *application) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		m := httpsnoop.CaptureMetrics(next, w, r)

		route := routeLabel(r)
		metrics.ObserveRequest(r.Method, route, m.Code, m.Duration)

		app.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", m.Code).
			Dur("duration", m.Duration).
			Int64("bytes", m.Written).
			Str("remote_addr", r.RemoteAddr).
			Msg("Request served")
	})
}

// requireAuth rejects requests without a valid bearer token and stores the
// session in the request context.
func (app *application) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		token, ok := bearerToken(r)
		if !ok {
			app.notAuthenticatedResponse(w, r)
			return
		}

		session, err := app.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrInvalidSession) {
				app.invalidTokenResponse(w, r)
				return
			}
			app.serverErrorResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, app.contextSetSession(r, session))
	}
}
