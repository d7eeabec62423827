package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/omdb-catalog/pkg/auth"
	"github.com/Sternrassler/omdb-catalog/pkg/movie"
	"github.com/Sternrassler/omdb-catalog/pkg/omdb"
	"github.com/Sternrassler/omdb-catalog/pkg/store"
)

type movieStore interface {
	List(ctx context.Context, f store.Filters) ([]movie.Movie, store.Metadata, error)
	GetByTitle(ctx context.Context, title string) (movie.Movie, error)
	First(ctx context.Context) (movie.Movie, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Insert(ctx context.Context, m *movie.Movie) error
	Delete(ctx context.Context, id int64) error
}

type authenticator interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, auth.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// moviePage is the /list response body.
type moviePage struct {
	Items []movie.Movie `json:"items"`
	store.Metadata
}

func (app *application) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	errs := map[string]string{}

	def := store.DefaultFilters()
	filters := store.Filters{
		Page:    app.readInt(qs, "page", def.Page, errs),
		PerPage: app.readInt(qs, "perpage", def.PerPage, errs),
	}
	if len(errs) > 0 {
		app.failedValidationResponse(w, r, errs)
		return
	}

	if err := filters.Validate(); err != nil {
		var ve store.ValidationError
		if errors.As(err, &ve) {
			app.failedValidationResponse(w, r, ve)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	movies, metadata, err := app.movies.List(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, moviePage{Items: movies, Metadata: metadata}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showMovieHandler returns the movie with the given title, or the first
// stored movie when no title is given.
func (app *application) showMovieHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")

	var (
		m   movie.Movie
		err error
	)
	if title != "" {
		m, err = app.movies.GetByTitle(r.Context(), title)
	} else {
		m, err = app.movies.First(r.Context())
	}
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			app.errorResponse(w, r, http.StatusNotFound, "Movie not found")
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, m, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) addMovieHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		app.failedValidationResponse(w, r, map[string]string{"title": "must be provided"})
		return
	}

	m, err := app.addMovie(r.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateTitle), errors.Is(err, store.ErrDuplicateExternalID):
			app.errorResponse(w, r, http.StatusConflict, "Movie already exists in database")
		default:
			app.omdbErrorResponse(w, r, err)
		}
		return
	}

	app.logger.Info().Int64("id", m.ID).Str("imdbid", m.ExternalID).Str("title", m.Title).Msg("Movie added")

	if err := app.writeJSON(w, http.StatusOK, m, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// addMovie looks title up in OMDB and stores the result. A stored movie with
// the same title fails with store.ErrDuplicateTitle before any provider call.
func (app *application) addMovie(ctx context.Context, title string) (movie.Movie, error) {
	exists, err := app.movies.ExistsByTitle(ctx, title)
	if err != nil {
		return movie.Movie{}, err
	}
	if exists {
		return movie.Movie{}, store.ErrDuplicateTitle
	}

	payload, err := app.omdb.Query(ctx, omdb.TitleParams(title))
	if err != nil {
		return movie.Movie{}, err
	}

	m, err := movie.MapDetail(payload)
	if err != nil {
		return movie.Movie{}, err
	}

	if err := app.movies.Insert(ctx, &m); err != nil {
		return movie.Movie{}, err
	}
	return m, nil
}

func (app *application) removeMovieHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		app.failedValidationResponse(w, r, map[string]string{"id": "must be an integer value"})
		return
	}

	if err := app.movies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			app.errorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Movie with id: %d not found", id))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	session := app.contextGetSession(r)
	app.logger.Info().Int64("id", id).Str("username", session.Username).Msg("Movie removed")

	if err := app.writeJSON(w, http.StatusOK, envelope{"1 row": "removed"}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err := app.auth.Signup(r.Context(), input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmptyCredentials):
			app.failedValidationResponse(w, r, map[string]string{"username": "must be provided", "password": "must be provided"})
		case errors.Is(err, store.ErrDuplicateUsername):
			app.errorResponse(w, r, http.StatusConflict, "Username already registered")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"signup": "Successful"}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// tokenHandler exchanges form credentials for a bearer token. Both
// urlencoded and multipart bodies are accepted.
func (app *application) tokenHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		app.badRequestResponse(w, r, err)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	errs := map[string]string{}
	if username == "" {
		errs["username"] = "must be provided"
	}
	if password == "" {
		errs["password"] = "must be provided"
	}
	if len(errs) > 0 {
		app.failedValidationResponse(w, r, errs)
		return
	}

	token, session, err := app.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.invalidCredentialsResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	body := envelope{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(time.Until(session.Expires).Seconds()),
	}
	if err := app.writeJSON(w, http.StatusOK, body, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler pings every backing service.
func (app *application) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range app.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		app.logger.Warn().Interface("failed", failed).Msg("Readiness check failed")
		app.errorResponse(w, r, http.StatusServiceUnavailable, failed)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"status": "ready"}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
