package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Sternrassler/omdb-catalog/pkg/movie"
)

// DefaultMoviesTable is the table name used when none is configured.
const DefaultMoviesTable = "omdb_movie_info"

const movieColumns = "id, imdbid, title, year, genre, released, language, director, writer, actors"

// Movies reads and writes movie rows in a configurable table.
type Movies struct {
	db    *sql.DB
	table string // quoted identifier
}

// NewMovies returns a store for the named table.
func NewMovies(db *sql.DB, table string) *Movies {
	if table == "" {
		table = DefaultMoviesTable
	}
	return &Movies{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

// Migrate creates the table if it does not exist.
func (s *Movies) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id       BIGSERIAL PRIMARY KEY,
			imdbid   VARCHAR(255) NOT NULL UNIQUE,
			title    VARCHAR(255),
			year     INTEGER,
			genre    VARCHAR(255),
			released VARCHAR(255),
			language VARCHAR(255),
			director TEXT,
			writer   TEXT,
			actors   TEXT
		)`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create movies table: %w", err)
	}
	return nil
}

// IsEmpty reports whether the table has no rows.
func (s *Movies) IsEmpty(ctx context.Context) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s)`, s.table)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return false, fmt.Errorf("check movies table: %w", err)
	}
	return !exists, nil
}

// Insert stores m and sets its ID.
func (s *Movies) Insert(ctx context.Context, m *movie.Movie) error {
	return s.insert(ctx, s.db, m)
}

// InsertAll stores every movie in one transaction and sets their IDs. Either
// all rows are committed or none are.
func (s *Movies) InsertAll(ctx context.Context, movies []movie.Movie) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for i := range movies {
			if err := s.insert(ctx, tx, &movies[i]); err != nil {
				return fmt.Errorf("insert %s: %w", movies[i].ExternalID, err)
			}
		}
		return nil
	})
}

func (s *Movies) insert(ctx context.Context, q queryer, m *movie.Movie) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (imdbid, title, year, genre, released, language, director, writer, actors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`, s.table)

	var year sql.NullInt32
	if m.Year != nil {
		year = sql.NullInt32{Int32: *m.Year, Valid: true}
	}

	err := q.QueryRowContext(ctx, query,
		m.ExternalID, m.Title, year, m.Genre, m.Released,
		m.Language, m.Director, m.Writer, m.Actors,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateExternalID
		}
		return err
	}
	return nil
}

// List returns one page of movies ordered by title.
func (s *Movies) List(ctx context.Context, f Filters) ([]movie.Movie, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM %s
		ORDER BY title, id
		LIMIT $1 OFFSET $2`, movieColumns, s.table)

	rows, err := s.db.QueryContext(ctx, query, f.limit(), f.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	total := 0
	movies := []movie.Movie{}
	for rows.Next() {
		var m movie.Movie
		var year sql.NullInt32
		var title, genre, released, language, director, writer, actors sql.NullString
		err := rows.Scan(&total, &m.ID, &m.ExternalID, &title, &year, &genre,
			&released, &language, &director, &writer, &actors)
		if err != nil {
			return nil, Metadata{}, err
		}
		fill(&m, year, title, genre, released, language, director, writer, actors)
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	if len(movies) == 0 && f.Page > 1 {
		// OFFSET past the end yields no rows and so no window count.
		if total, err = s.count(ctx); err != nil {
			return nil, Metadata{}, err
		}
	}

	return movies, calculateMetadata(total, f), nil
}

func (s *Movies) count(ctx context.Context) (int, error) {
	var total int
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// GetByTitle returns the first movie with exactly this title.
func (s *Movies) GetByTitle(ctx context.Context, title string) (movie.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE title = $1 ORDER BY id LIMIT 1`, movieColumns, s.table)
	return s.get(ctx, query, title)
}

// First returns the movie with the lowest id.
func (s *Movies) First(ctx context.Context) (movie.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id LIMIT 1`, movieColumns, s.table)
	return s.get(ctx, query)
}

// ExistsByTitle reports whether any movie has exactly this title.
func (s *Movies) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE title = $1)`, s.table)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, title).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes the movie with the given id.
func (s *Movies) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Movies) get(ctx context.Context, query string, args ...any) (movie.Movie, error) {
	var m movie.Movie
	var year sql.NullInt32
	var title, genre, released, language, director, writer, actors sql.NullString

	err := s.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.ExternalID, &title, &year,
		&genre, &released, &language, &director, &writer, &actors)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return movie.Movie{}, ErrRecordNotFound
		}
		return movie.Movie{}, err
	}
	fill(&m, year, title, genre, released, language, director, writer, actors)
	return m, nil
}

// fill copies nullable columns into m; NULL text reads as "".
func fill(m *movie.Movie, year sql.NullInt32, title, genre, released, language, director, writer, actors sql.NullString) {
	if year.Valid {
		m.Year = movie.YearOf(year.Int32)
	}
	m.Title = title.String
	m.Genre = genre.String
	m.Released = released.String
	m.Language = language.String
	m.Director = director.String
	m.Writer = writer.String
	m.Actors = actors.String
}
