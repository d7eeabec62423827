package main

import (
	"context"
	"net/http"

	"github.com/Sternrassler/omdb-catalog/pkg/auth"
)

type contextKey string

const sessionContextKey = contextKey("session")

func (app *application) contextSetSession(r *http.Request, session *auth.Session) *http.Request {
	ctx := context.WithValue(r.Context(), sessionContextKey, session)
	return r.WithContext(ctx)
}

// contextGetSession panics if requireAuth did not run for this request.
func (app *application) contextGetSession(r *http.Request) *auth.Session {
	session, ok := r.Context().Value(sessionContextKey).(*auth.Session)
	if !ok {
		panic("missing session value in request context")
	}
	return session
}
