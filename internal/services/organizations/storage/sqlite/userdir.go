package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
	_ "modernc.org/sqlite"
)

// UserDirectory resolves identities from the auth service's SQLite database.
// The directory opens the database read-only; identity rows are owned by
// the auth service and never written here.
type UserDirectory struct {
	sqlDB *sql.DB
}

var _ domain.UserDirectory = (*UserDirectory)(nil)

// OpenUserDirectory opens a read-only handle to the auth database.
func OpenUserDirectory(path string) (*UserDirectory, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("auth db path is required")
	}
	dsn := filepath.Clean(path) + "?mode=ro&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open auth db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping auth db: %w", err)
	}
	return &UserDirectory{sqlDB: sqlDB}, nil
}

// Close closes the auth database handle.
func (d *UserDirectory) Close() error {
	if d == nil || d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

// GetUser returns the user with the given ID.
func (d *UserDirectory) GetUser(ctx context.Context, userID string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	if d == nil || d.sqlDB == nil {
		return domain.User{}, fmt.Errorf("user directory is not configured")
	}

	row := d.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, email, name FROM users WHERE id = ?`,
		userID,
	)
	return scanUser(row)
}

// FindUserByEmail returns the user with the given email, matched
// case-insensitively.
func (d *UserDirectory) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	if d == nil || d.sqlDB == nil {
		return domain.User{}, fmt.Errorf("user directory is not configured")
	}

	row := d.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, email, name FROM users WHERE LOWER(email) = LOWER(?)`,
		email,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
