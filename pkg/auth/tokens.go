package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 30 * time.Minute

var (
	// ErrInvalidToken indicates the token is unknown, expired or revoked
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSession indicates the stored session could not be decoded
	ErrInvalidSession = errors.New("invalid session")
)

// TokenStore issues and validates bearer tokens with a Redis backend.
type TokenStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewTokenStore creates a token store. A non-positive ttl uses DefaultTokenTTL.
func NewTokenStore(redisClient *redis.Client, ttl time.Duration) *TokenStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// TTL returns the lifetime of newly issued tokens.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for username and stores its session.
func (s *TokenStore) Issue(ctx context.Context, username string) (string, Session, error) {
	token, err := newToken()
	if err != nil {
		StoreErrors.WithLabelValues("issue").Inc()
		return "", Session{}, err
	}

	now := time.Now()
	session := Session{
		Username: username,
		IssuedAt: now,
		Expires:  now.Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		StoreErrors.WithLabelValues("issue").Inc()
		return "", Session{}, fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, tokenKey(token), data, s.ttl).Err(); err != nil {
		StoreErrors.WithLabelValues("issue").Inc()
		return "", Session{}, fmt.Errorf("redis set: %w", err)
	}

	TokensIssued.Inc()
	return token, session, nil
}

// Lookup returns the session for token.
// Returns ErrInvalidToken if the token is unknown or expired.
func (s *TokenStore) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		TokenLookups.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidToken
	}

	key := tokenKey(token)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			TokenLookups.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidToken
		}
		StoreErrors.WithLabelValues("lookup").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		StoreErrors.WithLabelValues("lookup").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	// Redis expiry has second granularity
	if session.IsExpired() {
		_ = s.redis.Del(ctx, key).Err()
		TokenLookups.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidToken
	}

	TokenLookups.WithLabelValues("valid").Inc()
	return &session, nil
}

// Revoke removes a token. Revoking an unknown token is not an error.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, tokenKey(token)).Err(); err != nil {
		StoreErrors.WithLabelValues("revoke").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
