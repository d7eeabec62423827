package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/omdb-catalog/pkg/movie"
)

type seedStore interface {
	IsEmpty(ctx context.Context) (bool, error)
	InsertAll(ctx context.Context, movies []movie.Movie) error
}

type seedRunner interface {
	Run(ctx context.Context) ([]movie.Movie, error)
}

// seed fills an empty movie table from the ingestion pipeline. A populated
// table is left untouched; a failed run stores nothing.
func seed(ctx context.Context, s seedStore, runner seedRunner, logger zerolog.Logger) error {
	empty, err := s.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		logger.Info().Msg("Movie table already populated, skipping seed")
		return nil
	}

	movies, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}

	if err := s.InsertAll(ctx, movies); err != nil {
		return fmt.Errorf("store seeded movies: %w", err)
	}

	logger.Info().Int("movies", len(movies)).Msg("Movie table seeded")
	return nil
}
