package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// DefaultUsersTable is the table name used when none is configured.
const DefaultUsersTable = "omdb_users"

// User is a stored credential. The raw password never reaches this package.
type User struct {
	Username     string
	PasswordHash []byte
}

// Users reads and writes credentials.
type Users struct {
	db    *sql.DB
	table string
}

// NewUsers returns a store for the named table.
func NewUsers(db *sql.DB, table string) *Users {
	if table == "" {
		table = DefaultUsersTable
	}
	return &Users{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

// Migrate creates the table if it does not exist.
func (s *Users) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			username VARCHAR(255) PRIMARY KEY,
			password BYTEA NOT NULL
		)`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Insert stores a new user.
func (s *Users) Insert(ctx context.Context, u User) error {
	query := fmt.Sprintf(`INSERT INTO %s (username, password) VALUES ($1, $2)`, s.table)

	if _, err := s.db.ExecContext(ctx, query, u.Username, u.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// GetByUsername returns the user or ErrRecordNotFound.
func (s *Users) GetByUsername(ctx context.Context, username string) (User, error) {
	query := fmt.Sprintf(`SELECT username, password FROM %s WHERE username = $1`, s.table)

	var u User
	err := s.db.QueryRowContext(ctx, query, username).Scan(&u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrRecordNotFound
		}
		return User{}, err
	}
	return u, nil
}
