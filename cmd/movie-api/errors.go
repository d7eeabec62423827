package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Sternrassler/omdb-catalog/pkg/movie"
	"github.com/Sternrassler/omdb-catalog/pkg/omdb"
)

// Error bodies have the form {"detail": ...}.

func (app *application) logError(r *http.Request, err error) {
	app.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, detail any) {
	app.errorResponseWithHeaders(w, r, status, detail, nil)
}

func (app *application) errorResponseWithHeaders(w http.ResponseWriter, r *http.Request, status int, detail any, headers http.Header) {
	if err := app.writeJSON(w, status, envelope{"detail": detail}, headers); err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "Not Found")
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errs)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	headers := http.Header{"WWW-Authenticate": []string{"Bearer"}}
	app.errorResponseWithHeaders(w, r, http.StatusUnauthorized, "Incorrect username or password", headers)
}

func (app *application) notAuthenticatedResponse(w http.ResponseWriter, r *http.Request) {
	headers := http.Header{"WWW-Authenticate": []string{"Bearer"}}
	app.errorResponseWithHeaders(w, r, http.StatusUnauthorized, "Not authenticated", headers)
}

func (app *application) invalidTokenResponse(w http.ResponseWriter, r *http.Request) {
	headers := http.Header{"WWW-Authenticate": []string{"Bearer"}}
	app.errorResponseWithHeaders(w, r, http.StatusUnauthorized, "Could not validate credentials", headers)
}

// omdbErrorResponse maps a failed provider lookup to a status code.
func (app *application) omdbErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, omdb.ErrNotFound):
		app.errorResponse(w, r, http.StatusNotFound, "Movie Not Found in OMDB.")
	case errors.Is(err, omdb.ErrContextCancelled):
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusGatewayTimeout, "OMDB request timed out")
	case errors.Is(err, omdb.ErrNetwork),
		errors.Is(err, omdb.ErrUnexpectedStatus),
		errors.Is(err, omdb.ErrMalformedResponse),
		errors.Is(err, movie.ErrDataShape):
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusBadGateway, "OMDB lookup failed")
	default:
		app.serverErrorResponse(w, r, err)
	}
}
