package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
)

func seedAuthDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.db")
	authDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open auth sqlite: %v", err)
	}
	defer func() { _ = authDB.Close() }()

	if _, err := authDB.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT ''
		)`); err != nil {
		t.Fatalf("create users table: %v", err)
	}
	if _, err := authDB.Exec(
		`INSERT INTO users (id, email, name) VALUES (?, ?, ?)`,
		"user-1", "Member@Example.com", "Member One",
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return path
}

func TestUserDirectoryLookups(t *testing.T) {
	t.Parallel()

	directory, err := OpenUserDirectory(seedAuthDB(t))
	if err != nil {
		t.Fatalf("open user directory: %v", err)
	}
	t.Cleanup(func() { _ = directory.Close() })

	ctx := context.Background()
	user, err := directory.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Email != "Member@Example.com" || user.Name != "Member One" {
		t.Errorf("unexpected user %+v", user)
	}

	if _, err := directory.GetUser(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// Email lookup ignores case.
	found, err := directory.FindUserByEmail(ctx, "member@example.COM")
	if err != nil {
		t.Fatalf("find user by email: %v", err)
	}
	if found.ID != "user-1" {
		t.Errorf("expected user-1, got %q", found.ID)
	}
	if _, err := directory.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
