package ingest

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/omdb-catalog/pkg/movie"
	"github.com/Sternrassler/omdb-catalog/pkg/omdb"
)

// Seed dataset parameters.
const (
	SeedTerm  = "marvel"
	SeedType  = "movie"
	SeedPages = 10
)

var (
	ingestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_runs_total",
		Help: "Bulk ingestion runs by outcome",
	}, []string{"outcome"})

	ingestMoviesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_movies_total",
		Help: "Movies assembled by successful bulk ingestion runs",
	})
)

// Querier is the provider call the pipeline depends on. *omdb.Client
// implements it.
type Querier interface {
	Query(ctx context.Context, params url.Values) (omdb.Payload, error)
}

// Config holds pipeline configuration.
type Config struct {
	Term  string
	Type  string
	Pages int
}

// DefaultConfig returns the seed dataset: ten pages of "marvel" movies.
func DefaultConfig() Config {
	return Config{
		Term:  SeedTerm,
		Type:  SeedType,
		Pages: SeedPages,
	}
}

// Pipeline assembles movie records from search and detail lookups.
type Pipeline struct {
	querier Querier
	config  Config
	logger  zerolog.Logger
}

// New creates a pipeline. Zero config fields take DefaultConfig values.
func New(q Querier, config Config) *Pipeline {
	def := DefaultConfig()
	if config.Term == "" {
		config.Term = def.Term
	}
	if config.Type == "" {
		config.Type = def.Type
	}
	if config.Pages <= 0 {
		config.Pages = def.Pages
	}

	return &Pipeline{
		querier: q,
		config:  config,
		logger:  log.With().Str("component", "ingest").Logger(),
	}
}

// Run fetches every configured page and the details of each listed title.
// It returns the records in discovery order, or nil and the first error.
func (p *Pipeline) Run(ctx context.Context) ([]movie.Movie, error) {
	start := time.Now()

	p.logger.Info().
		Str("term", p.config.Term).
		Int("pages", p.config.Pages).
		Msg("Starting bulk ingestion")

	var movies []movie.Movie
	for page := 1; page <= p.config.Pages; page++ {
		pageMovies, err := p.fetchPage(ctx, page)
		if err != nil {
			ingestRunsTotal.WithLabelValues("failed").Inc()
			p.logger.Error().
				Err(err).
				Int("page", page).
				Int("discarded", len(movies)).
				Msg("Bulk ingestion aborted")
			return nil, err
		}
		movies = append(movies, pageMovies...)

		p.logger.Info().
			Int("page", page).
			Int("page_movies", len(pageMovies)).
			Int("total", len(movies)).
			Msg("Adding page")
	}

	ingestRunsTotal.WithLabelValues("succeeded").Inc()
	ingestMoviesTotal.Add(float64(len(movies)))
	p.logger.Info().
		Int("movies", len(movies)).
		Dur("duration", time.Since(start)).
		Msg("Bulk ingestion complete")

	return movies, nil
}

// fetchPage runs one search call and the detail lookups for its results.
func (p *Pipeline) fetchPage(ctx context.Context, page int) ([]movie.Movie, error) {
	payload, err := p.querier.Query(ctx, omdb.SearchParams(p.config.Term, p.config.Type, page))
	if err != nil {
		return nil, fmt.Errorf("search page %d: %w", page, err)
	}

	ids, err := movie.SearchIDs(payload)
	if err != nil {
		return nil, fmt.Errorf("search page %d: %w", page, err)
	}

	movies := make([]movie.Movie, 0, len(ids))
	for _, id := range ids {
		detail, err := p.querier.Query(ctx, omdb.IDParams(id))
		if err != nil {
			return nil, fmt.Errorf("detail %s: %w", id, err)
		}
		m, err := movie.MapDetail(detail)
		if err != nil {
			return nil, fmt.Errorf("detail %s: %w", id, err)
		}
		p.logger.Debug().
			Str("imdbid", m.ExternalID).
			Str("title", m.Title).
			Msg("Mapped movie")
		movies = append(movies, m)
	}
	return movies, nil
}
