package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Sternrassler/omdb-catalog/internal/config"
	"github.com/Sternrassler/omdb-catalog/pkg/auth"
	"github.com/Sternrassler/omdb-catalog/pkg/ingest"
	"github.com/Sternrassler/omdb-catalog/pkg/logging"
	"github.com/Sternrassler/omdb-catalog/pkg/omdb"
	"github.com/Sternrassler/omdb-catalog/pkg/store"
)

// application holds the dependencies shared by handlers and middleware.
type application struct {
	config  *config.Config
	logger  zerolog.Logger
	movies  movieStore
	omdb    ingest.Querier
	auth    authenticator
	limiter *rate.Limiter
	checks  map[string]func(context.Context) error
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Service stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:   logging.Level(cfg.LogLevel),
		Pretty:  cfg.LogPretty,
		Service: "movie-api",
		Output:  os.Stderr,
	})
	logger := logging.NewLogger("main")

	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info().Str("host", cfg.DB.Host).Str("database", cfg.DB.Name).Msg("Connected to Postgres")

	movies := store.NewMovies(db, cfg.MoviesTable)
	users := store.NewUsers(db, cfg.UsersTable)
	if err := movies.Migrate(ctx); err != nil {
		return err
	}
	if err := users.Migrate(ctx); err != nil {
		return err
	}

	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Str("addr", redisClient.Options().Addr).Msg("Connected to Redis")

	omdbConfig := omdb.DefaultConfig(cfg.OMDBAPIKey)
	omdbConfig.BaseURL = cfg.OMDBURL
	omdbConfig.Timeout = cfg.OMDBTimeout
	omdbClient, err := omdb.New(omdbConfig)
	if err != nil {
		return err
	}
	defer omdbClient.Close()

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)

	app := &application{
		config: cfg,
		logger: logging.NewLogger("http"),
		movies: movies,
		omdb:   omdbClient,
		auth:   auth.New(users, tokens),
		checks: map[string]func(context.Context) error{
			"postgres": db.PingContext,
			"redis":    tokens.Ping,
		},
	}
	if cfg.RateLimitEnabled {
		app.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	if cfg.SeedOnStart {
		seedCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		err := seed(seedCtx, movies, ingest.New(omdbClient, ingest.DefaultConfig()), logger)
		cancel()
		if err != nil {
			return err
		}
	}

	return app.serve()
}

// newRedisClient accepts either a host:port address or a redis:// URL.
func newRedisClient(raw string) (*redis.Client, error) {
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: raw}), nil
}
