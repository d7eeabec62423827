package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"CONFIG_FILE", "PORT", "OMDB_URL", "OMDB_API_KEY", "OMDB_TIMEOUT",
	"TABLE_NAME", "USERS_TABLE_NAME", "DB_HOST", "DB_PORT", "DB_USER",
	"DB_PASS", "DB_NAME", "DB_SSLMODE", "REDIS_URL", "TOKEN_TTL",
	"LOG_LEVEL", "LOG_PRETTY", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"RATE_LIMIT_ENABLED", "SEED_ON_START",
}

// isolate clears every key so the host environment cannot leak in. Empty
// values are treated as unset.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OMDB_API_KEY", "key")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASS", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "https://www.omdbapi.com/", cfg.OMDBURL)
	assert.Equal(t, "key", cfg.OMDBAPIKey)
	assert.Equal(t, 10*time.Second, cfg.OMDBTimeout)
	assert.Equal(t, "omdb_movie_info", cfg.MoviesTable)
	assert.Equal(t, "omdb_users", cfg.UsersTable)
	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "movies", cfg.DB.User)
	assert.Equal(t, "secret", cfg.DB.Password)
	assert.Equal(t, "movies", cfg.DB.Name)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.True(t, cfg.RateLimitEnabled)
	assert.True(t, cfg.SeedOnStart)
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TABLE_NAME", "films")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("TOKEN_TTL", "5m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "films", cfg.MoviesTable)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.False(t, cfg.SeedOnStart)
	assert.False(t, cfg.RateLimitEnabled)
}

func TestLoad_Missing(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissing))

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"OMDB_API_KEY", "DB_PASS"}, missing.Keys)
	assert.Contains(t, err.Error(), "OMDB_API_KEY, DB_PASS")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "PORT", "70000"},
		{"negative ttl", "TOKEN_TTL", "-1m"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"zero burst", "RATE_LIMIT_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrMissing))
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "omdb_api_key: filekey\ndb_host: filehost\ndb_pass: filepass\ntable_name: from_file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_HOST", "envhost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "filekey", cfg.OMDBAPIKey)
	assert.Equal(t, "envhost", cfg.DB.Host, "environment wins over file")
	assert.Equal(t, "from_file", cfg.MoviesTable)
}

func TestLoad_ConfigFileMissing(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
}
