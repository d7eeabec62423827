//go:build integration

package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/omdb-catalog/pkg/movie"
)

// setupPostgres starts a PostgreSQL container and returns an open pool.
func setupPostgres(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "movies",
			"POSTGRES_PASSWORD": "secret",
			"POSTGRES_DB":       "movies",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}
	portNum, _ := strconv.Atoi(port.Port())

	db, err := Open(ctx, Config{
		Host:     host,
		Port:     portNum,
		User:     "movies",
		Password: "secret",
		Name:     "movies",
	})
	if err != nil {
		pgContainer.Terminate(ctx)
		t.Fatalf("Failed to open database: %v", err)
	}

	cleanup := func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func sample(id, title string) movie.Movie {
	return movie.Movie{
		ExternalID: id,
		Title:      title,
		Year:       movie.YearOf(1989),
		Genre:      "Action, Adventure",
		Released:   "23 Jun 1989",
		Language:   "English, French, Spanish",
		Director:   "Tim Burton",
		Writer:     "Bob Kane, Sam Hamm, Warren Skaaren",
		Actors:     "Michael Keaton, Jack Nicholson, Kim Basinger",
	}
}

func TestIntegration_Movies(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	movies := NewMovies(db, "integration_movies")
	if err := movies.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	empty, err := movies.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("IsEmpty() = %v, %v, want true", empty, err)
	}
	if _, err := movies.First(ctx); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("First() on empty table error = %v", err)
	}

	batch := []movie.Movie{sample("tt2", "Batman Returns"), sample("tt1", "Batman")}
	batch[0].Year = nil
	if err := movies.InsertAll(ctx, batch); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}
	if batch[0].ID == 0 || batch[1].ID == 0 {
		t.Errorf("InsertAll() did not assign ids: %+v", batch)
	}

	empty, _ = movies.IsEmpty(ctx)
	if empty {
		t.Error("IsEmpty() = true after insert")
	}

	// listing is ordered by title
	items, meta, err := movies.List(ctx, Filters{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 || items[0].Title != "Batman" || items[1].Title != "Batman Returns" {
		t.Errorf("List() items = %+v", items)
	}
	if items[1].Year != nil {
		t.Errorf("NULL year read back as %v", *items[1].Year)
	}
	if meta != (Metadata{Page: 1, Pages: 1, Size: 10, Total: 2}) {
		t.Errorf("List() metadata = %+v", meta)
	}

	_, meta, err = movies.List(ctx, Filters{Page: 5, PerPage: 1})
	if err != nil || meta.Total != 2 || meta.Pages != 2 {
		t.Errorf("List() past end = %+v, %v", meta, err)
	}

	got, err := movies.GetByTitle(ctx, "Batman")
	if err != nil {
		t.Fatalf("GetByTitle() error = %v", err)
	}
	want := sample("tt1", "Batman")
	want.ID = batch[1].ID
	if *got.Year != *want.Year || got.ExternalID != want.ExternalID || got.Actors != want.Actors {
		t.Errorf("GetByTitle() = %+v, want %+v", got, want)
	}

	first, err := movies.First(ctx)
	if err != nil || first.ID != batch[0].ID {
		t.Errorf("First() = %+v, %v", first, err)
	}

	exists, err := movies.ExistsByTitle(ctx, "Batman")
	if err != nil || !exists {
		t.Errorf("ExistsByTitle() = %v, %v", exists, err)
	}

	// same external id, different title
	dup := sample("tt1", "Batman (1989)")
	if err := movies.Insert(ctx, &dup); !errors.Is(err, ErrDuplicateExternalID) {
		t.Errorf("Insert() duplicate error = %v", err)
	}

	if err := movies.Delete(ctx, batch[0].ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := movies.Delete(ctx, batch[0].ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestIntegration_InsertAllIsAtomic(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	movies := NewMovies(db, "")
	if err := movies.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	batch := []movie.Movie{sample("tt1", "A"), sample("tt2", "B"), sample("tt1", "C")}
	err := movies.InsertAll(ctx, batch)
	if !errors.Is(err, ErrDuplicateExternalID) {
		t.Fatalf("InsertAll() error = %v, want ErrDuplicateExternalID", err)
	}

	empty, err := movies.IsEmpty(ctx)
	if err != nil || !empty {
		t.Errorf("IsEmpty() after failed batch = %v, %v, want true", empty, err)
	}
}

func TestIntegration_Users(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	users := NewUsers(db, "")
	if err := users.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	u := User{Username: "user1", PasswordHash: []byte("$2a$12$hash")}
	if err := users.Insert(ctx, u); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := users.Insert(ctx, u); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("duplicate Insert() error = %v", err)
	}

	got, err := users.GetByUsername(ctx, "user1")
	if err != nil || string(got.PasswordHash) != "$2a$12$hash" {
		t.Errorf("GetByUsername() = %+v, %v", got, err)
	}
	if _, err := users.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetByUsername() missing error = %v", err)
	}
}
