package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
)

const invitationColumns = `id, organization_id, invited_by_user_id, email, accepted_by_user_id,
	role, token, expires_at, accepted_at, declined_at, created_at, updated_at, deleted_at`

func invitationArgs(invitation domain.Invitation) []any {
	return []any{
		invitation.ID,
		invitation.OrganizationID,
		invitation.InvitedByUserID,
		invitation.Email,
		invitation.AcceptedByUserID,
		int(invitation.Role),
		invitation.Token,
		toMillis(invitation.ExpiresAt),
		toNullMillis(invitation.AcceptedAt),
		toNullMillis(invitation.DeclinedAt),
		toMillis(invitation.CreatedAt),
		toMillis(invitation.UpdatedAt),
		toNullMillis(invitation.DeletedAt),
	}
}

func scanInvitationRow(scan func(...any) error) (domain.Invitation, error) {
	var invitation domain.Invitation
	var role int
	var expiresAt, createdAt, updatedAt int64
	var acceptedAt, declinedAt, deletedAt sql.NullInt64

	err := scan(
		&invitation.ID,
		&invitation.OrganizationID,
		&invitation.InvitedByUserID,
		&invitation.Email,
		&invitation.AcceptedByUserID,
		&role,
		&invitation.Token,
		&expiresAt,
		&acceptedAt,
		&declinedAt,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invitation{}, domain.ErrNotFound
		}
		return domain.Invitation{}, fmt.Errorf("scan invitation: %w", err)
	}

	invitation.Role = domain.Role(role)
	invitation.ExpiresAt = fromMillis(expiresAt)
	invitation.AcceptedAt = fromNullMillis(acceptedAt)
	invitation.DeclinedAt = fromNullMillis(declinedAt)
	invitation.CreatedAt = fromMillis(createdAt)
	invitation.UpdatedAt = fromMillis(updatedAt)
	invitation.DeletedAt = fromNullMillis(deletedAt)
	return invitation, nil
}

func putInvitationExec(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, invitation domain.Invitation) error {
	_, err := execer.ExecContext(
		ctx,
		`INSERT INTO invitations (`+invitationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   accepted_by_user_id = excluded.accepted_by_user_id,
		   token = excluded.token,
		   expires_at = excluded.expires_at,
		   accepted_at = excluded.accepted_at,
		   declined_at = excluded.declined_at,
		   updated_at = excluded.updated_at,
		   deleted_at = excluded.deleted_at`,
		invitationArgs(invitation)...,
	)
	return err
}

// PutInvitation upserts one invitation row by ID.
func (s *Store) PutInvitation(ctx context.Context, invitation domain.Invitation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(invitation.ID) == "" {
		return fmt.Errorf("invitation id is required")
	}
	if err := putInvitationExec(ctx, s.sqlDB, invitation); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put invitation: %w", err)
	}
	return nil
}

// CreateInvitationSuperseding inserts a fresh invitation, retiring any
// expired pending invitation holding the same (organization, email) key in
// the same transaction. The partial unique index turns a racing insert for
// an actionable key into domain.ErrConflict.
func (s *Store) CreateInvitationSuperseding(ctx context.Context, invitation domain.Invitation, now time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(invitation.ID) == "" {
		return fmt.Errorf("invitation id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin invitation create: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback invitation create: %v", cause, rollbackErr)
		}
		return cause
	}

	// Retire expired pending rows so the active-key index admits the new one.
	_, err = tx.ExecContext(
		ctx,
		`UPDATE invitations SET deleted_at = ?, updated_at = ?
		 WHERE organization_id = ? AND email = ?
		   AND accepted_at IS NULL AND declined_at IS NULL AND deleted_at IS NULL
		   AND expires_at < ?`,
		toMillis(now),
		toMillis(now),
		invitation.OrganizationID,
		invitation.Email,
		toMillis(now),
	)
	if err != nil {
		return rollbackWith(fmt.Errorf("retire expired invitations: %w", err))
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO invitations (`+invitationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invitationArgs(invitation)...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return rollbackWith(domain.ErrConflict)
		}
		return rollbackWith(fmt.Errorf("insert invitation: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invitation create: %w", err)
	}
	return nil
}

// AcceptInvitation atomically persists the accepted invitation and the
// membership it grants.
func (s *Store) AcceptInvitation(ctx context.Context, invitation domain.Invitation, membership domain.Membership) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin invitation accept: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback invitation accept: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putInvitationExec(ctx, tx, invitation); err != nil {
		return rollbackWith(fmt.Errorf("put invitation: %w", err))
	}
	_, err = tx.ExecContext(
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
		return rollbackWith(fmt.Errorf("put membership: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invitation accept: %w", err)
	}
	return nil
}

// GetInvitation returns one live invitation by ID.
func (s *Store) GetInvitation(ctx context.Context, invitationID string) (domain.Invitation, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Invitation{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE id = ? AND deleted_at IS NULL`,
		invitationID,
	)
	return scanInvitationRow(row.Scan)
}

// GetInvitationByToken returns one live invitation by its opaque token.
func (s *Store) GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Invitation{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE token = ? AND deleted_at IS NULL`,
		token,
	)
	return scanInvitationRow(row.Scan)
}

// FindActiveInvitation returns the actionable invitation for the
// (organization, email) key at now, or domain.ErrNotFound.
func (s *Store) FindActiveInvitation(ctx context.Context, organizationID, email string, now time.Time) (domain.Invitation, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Invitation{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE organization_id = ? AND email = ?
		   AND accepted_at IS NULL AND declined_at IS NULL AND deleted_at IS NULL
		   AND expires_at >= ?`,
		organizationID,
		email,
		toMillis(now),
	)
	return scanInvitationRow(row.Scan)
}
