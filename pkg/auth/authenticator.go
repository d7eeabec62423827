package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/omdb-catalog/pkg/store"
)

var (
	// ErrInvalidCredentials indicates an unknown username or wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyCredentials indicates a signup without username or password
	ErrEmptyCredentials = errors.New("username and password must not be empty")
)

// UserStore persists credentials.
type UserStore interface {
	Insert(ctx context.Context, u store.User) error
	GetByUsername(ctx context.Context, username string) (store.User, error)
}

// Tokens issues and validates bearer tokens.
type Tokens interface {
	Issue(ctx context.Context, username string) (string, Session, error)
	Lookup(ctx context.Context, token string) (*Session, error)
}

// Authenticator ties password checks to token issuance.
type Authenticator struct {
	users  UserStore
	tokens Tokens
	logger zerolog.Logger
}

// New creates an Authenticator.
func New(users UserStore, tokens Tokens) *Authenticator {
	return &Authenticator{
		users:  users,
		tokens: tokens,
		logger: log.With().Str("component", "auth").Logger(),
	}
}

// Signup stores a new user with a hashed password.
// Returns store.ErrDuplicateUsername if the name is taken.
func (a *Authenticator) Signup(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if err := a.users.Insert(ctx, store.User{Username: username, PasswordHash: hash}); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return err
		}
		return fmt.Errorf("insert user: %w", err)
	}

	a.logger.Info().Str("username", username).Msg("User signed up")
	return nil
}

// Login checks the credentials and issues a token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, Session, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			LoginFailures.Inc()
			return "", Session{}, ErrInvalidCredentials
		}
		return "", Session{}, fmt.Errorf("get user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", Session{}, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		LoginFailures.Inc()
		return "", Session{}, ErrInvalidCredentials
	}

	token, session, err := a.tokens.Issue(ctx, user.Username)
	if err != nil {
		return "", Session{}, fmt.Errorf("issue token: %w", err)
	}

	a.logger.Debug().Str("username", user.Username).Time("expires", session.Expires).Msg("Token issued")
	return token, session, nil
}

// Authenticate resolves a bearer token to its session. The token's user must
// still exist.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Session, error) {
	session, err := a.tokens.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := a.users.GetByUsername(ctx, session.Username); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return session, nil
}
