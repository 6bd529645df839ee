// Package sqlite provides a SQLite-backed organizations storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/orgspace/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
	"github.com/louisbranch/orgspace/internal/services/organizations/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists organization lifecycle state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ domain.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	at := fromMillis(value.Int64)
	return &at
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "constraint failed: UNIQUE")
}

// Open opens a SQLite organizations store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func encodeSettings(settings map[string]string) (string, error) {
	if len(settings) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return string(raw), nil
}

func decodeSettings(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" || raw == "{}" {
		return nil, nil
	}
	settings := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// PutOrganization upserts one organization row by ID. A live name collision
// with another organization surfaces as domain.ErrConflict.
func (s *Store) PutOrganization(ctx context.Context, organization domain.Organization) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	organizationID := strings.TrimSpace(organization.ID)
	if organizationID == "" {
		return fmt.Errorf("organization id is required")
	}

	settingsJSON, err := encodeSettings(organization.Settings)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO organizations (id, name, description, owner_user_id, settings_json, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   owner_user_id = excluded.owner_user_id,
		   settings_json = excluded.settings_json,
		   updated_at = excluded.updated_at,
		   deleted_at = excluded.deleted_at`,
		organizationID,
		organization.Name,
		organization.Description,
		organization.OwnerUserID,
		settingsJSON,
		toMillis(organization.CreatedAt),
		toMillis(organization.UpdatedAt),
		toNullMillis(organization.DeletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put organization: %w", err)
	}
	return nil
}

func scanOrganization(row *sql.Row) (domain.Organization, error) {
	var organization domain.Organization
	var settingsJSON string
	var createdAt, updatedAt int64
	var deletedAt sql.NullInt64

	err := row.Scan(
		&organization.ID,
		&organization.Name,
		&organization.Description,
		&organization.OwnerUserID,
		&settingsJSON,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Organization{}, domain.ErrNotFound
		}
		return domain.Organization{}, fmt.Errorf("scan organization: %w", err)
	}

	organization.Settings, err = decodeSettings(settingsJSON)
	if err != nil {
		return domain.Organization{}, err
	}
	organization.CreatedAt = fromMillis(createdAt)
	organization.UpdatedAt = fromMillis(updatedAt)
	organization.DeletedAt = fromNullMillis(deletedAt)
	return organization, nil
}

// GetOrganization returns one live organization by ID.
func (s *Store) GetOrganization(ctx context.Context, organizationID string) (domain.Organization, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Organization{}, err
	}
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return domain.Organization{}, fmt.Errorf("organization id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, description, owner_user_id, settings_json, created_at, updated_at, deleted_at
		 FROM organizations
		 WHERE id = ? AND deleted_at IS NULL`,
		organizationID,
	)
	return scanOrganization(row)
}

// DeleteOrganization removes one organization and its dependent rows in a
// single transaction. The delete is hard: membership, invitation, and
// transfer history goes with the organization.
func (s *Store) DeleteOrganization(ctx context.Context, organizationID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return fmt.Errorf("organization id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin organization delete: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback organization delete: %v", cause, rollbackErr)
		}
		return cause
	}

	for _, stmt := range []string{
		`DELETE FROM memberships WHERE organization_id = ?`,
		`DELETE FROM invitations WHERE organization_id = ?`,
		`DELETE FROM transfer_requests WHERE organization_id = ?`,
		`DELETE FROM organizations WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, organizationID); err != nil {
			return rollbackWith(fmt.Errorf("delete organization rows: %w", err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit organization delete: %w", err)
	}
	return nil
}

// CountOrganizationsForUser counts distinct live organizations the user
// owns or holds an active membership in.
func (s *Store) CountOrganizationsForUser(ctx context.Context, userID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM (
		   SELECT id FROM organizations
		    WHERE deleted_at IS NULL AND owner_user_id = ?
		   UNION
		   SELECT o.id FROM organizations o
		     JOIN memberships m ON m.organization_id = o.id
		    WHERE o.deleted_at IS NULL AND m.user_id = ? AND m.active = 1
		 )`,
		userID,
		userID,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count organizations: %w", err)
	}
	return count, nil
}
