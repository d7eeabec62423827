// Package config loads service settings from the environment, optionally
// layered over a YAML file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sternrassler/omdb-catalog/pkg/logging"
	"github.com/Sternrassler/omdb-catalog/pkg/omdb"
	"github.com/Sternrassler/omdb-catalog/pkg/store"
)

// ErrMissing matches any *MissingError.
var ErrMissing = errors.New("missing required configuration")

// MissingError lists required keys that were not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissing, strings.Join(e.Keys, ", "))
}

// Is reports whether target is ErrMissing.
func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}

// Config holds every setting the service reads at startup.
type Config struct {
	Port int

	OMDBURL     string
	OMDBAPIKey  string
	OMDBTimeout time.Duration

	DB          store.Config
	MoviesTable string
	UsersTable  string

	RedisURL string
	TokenTTL time.Duration

	LogLevel  string
	LogPretty bool

	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitEnabled bool

	SeedOnStart bool
}

// required keys, checked after defaults are applied
var required = []string{"omdb_api_key", "db_host", "db_pass"}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", 8080)
	v.SetDefault("omdb_url", omdb.DefaultBaseURL)
	v.SetDefault("omdb_timeout", 10*time.Second)
	v.SetDefault("table_name", store.DefaultMoviesTable)
	v.SetDefault("users_table_name", store.DefaultUsersTable)
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "movies")
	v.SetDefault("db_name", "movies")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_url", "localhost:6379")
	v.SetDefault("token_ttl", 30*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("seed_on_start", true)

	for _, key := range required {
		v.BindEnv(key)
	}
	v.BindEnv("config_file")

	return v
}

// Load reads the configuration. Environment variables take precedence over
// the file named by CONFIG_FILE, which takes precedence over defaults.
func Load() (*Config, error) {
	v := newViper()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, strings.ToUpper(key))
		}
	}
	if len(missing) > 0 {
		return nil, &MissingError{Keys: missing}
	}

	cfg := &Config{
		Port:        v.GetInt("port"),
		OMDBURL:     v.GetString("omdb_url"),
		OMDBAPIKey:  v.GetString("omdb_api_key"),
		OMDBTimeout: v.GetDuration("omdb_timeout"),
		DB: store.Config{
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_pass"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		MoviesTable:      v.GetString("table_name"),
		UsersTable:       v.GetString("users_table_name"),
		RedisURL:         v.GetString("redis_url"),
		TokenTTL:         v.GetDuration("token_ttl"),
		LogLevel:         v.GetString("log_level"),
		LogPretty:        v.GetBool("log_pretty"),
		RateLimitRPS:     v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:   v.GetInt("rate_limit_burst"),
		RateLimitEnabled: v.GetBool("rate_limit_enabled"),
		SeedOnStart:      v.GetBool("seed_on_start"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges of the loaded values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		return fmt.Errorf("invalid DB_PORT %d", c.DB.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.OMDBTimeout <= 0 {
		return fmt.Errorf("OMDB_TIMEOUT must be positive, got %s", c.OMDBTimeout)
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
