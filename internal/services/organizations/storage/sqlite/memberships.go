package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
)

func membershipArgs(membership domain.Membership) []any {
	return []any{
		membership.OrganizationID,
		membership.UserID,
		int(membership.Role),
		membership.Active,
		toMillis(membership.CreatedAt),
		toMillis(membership.UpdatedAt),
	}
}

// CreateMembership inserts one membership row. An existing row for the
// (organization, user) pair surfaces as domain.ErrConflict.
func (s *Store) CreateMembership(ctx context.Context, membership domain.Membership) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if membership.OrganizationID == "" || membership.UserID == "" {
		return fmt.Errorf("organization id and user id are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO memberships (organization_id, user_id, role, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		membershipArgs(membership)...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

// PutMembership upserts one membership row.
func (s *Store) PutMembership(ctx context.Context, membership domain.Membership) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if membership.OrganizationID == "" || membership.UserID == "" {
		return fmt.Errorf("organization id and user id are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO memberships (organization_id, user_id, role, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(organization_id, user_id) DO UPDATE SET
		   role = excluded.role,
		   active = excluded.active,
		   updated_at = excluded.updated_at`,
		membershipArgs(membership)...,
	)
	if err != nil {
		return fmt.Errorf("put membership: %w", err)
	}
	return nil
}

// GetMembership returns one membership row.
func (s *Store) GetMembership(ctx context.Context, organizationID, userID string) (domain.Membership, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Membership{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT organization_id, user_id, role, active, created_at, updated_at
		 FROM memberships
		 WHERE organization_id = ? AND user_id = ?`,
		organizationID,
		userID,
	)
	return scanMembershipRow(row.Scan)
}

func scanMembershipRow(scan func(...any) error) (domain.Membership, error) {
	var membership domain.Membership
	var role int
	var createdAt, updatedAt int64

	err := scan(
		&membership.OrganizationID,
		&membership.UserID,
		&role,
		&membership.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Membership{}, domain.ErrNotFound
		}
		return domain.Membership{}, fmt.Errorf("scan membership: %w", err)
	}

	membership.Role = domain.Role(role)
	membership.CreatedAt = fromMillis(createdAt)
	membership.UpdatedAt = fromMillis(updatedAt)
	return membership, nil
}

// DeleteMembership removes one membership row.
func (s *Store) DeleteMembership(ctx context.Context, organizationID, userID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM memberships WHERE organization_id = ? AND user_id = ?`,
		organizationID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

// ListActiveMemberships returns the organization's active membership rows
// ordered by creation time.
func (s *Store) ListActiveMemberships(ctx context.Context, organizationID string) ([]domain.Membership, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return nil, fmt.Errorf("organization id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT organization_id, user_id, role, active, created_at, updated_at
		 FROM memberships
		 WHERE organization_id = ? AND active = 1
		 ORDER BY created_at, user_id`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var members []domain.Membership
	for rows.Next() {
		membership, err := scanMembershipRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		members = append(members, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return members, nil
}

// CountActiveMemberships counts the organization's active membership rows,
// excluding excludeUserID when set.
func (s *Store) CountActiveMemberships(ctx context.Context, organizationID, excludeUserID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM memberships
		 WHERE organization_id = ? AND active = 1 AND user_id != ?`,
		organizationID,
		excludeUserID,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count active memberships: %w", err)
	}
	return count, nil
}
