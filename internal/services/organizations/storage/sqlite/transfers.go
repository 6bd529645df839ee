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

const transferColumns = `id, organization_id, current_owner_user_id, new_owner_user_id, token,
	message, expires_at, accepted_at, declined_at, cancelled_at, created_at, updated_at, deleted_at`

func transferArgs(request domain.TransferRequest) []any {
	return []any{
		request.ID,
		request.OrganizationID,
		request.CurrentOwnerUserID,
		request.NewOwnerUserID,
		request.Token,
		request.Message,
		toMillis(request.ExpiresAt),
		toNullMillis(request.AcceptedAt),
		toNullMillis(request.DeclinedAt),
		toNullMillis(request.CancelledAt),
		toMillis(request.CreatedAt),
		toMillis(request.UpdatedAt),
		toNullMillis(request.DeletedAt),
	}
}

func scanTransferRow(scan func(...any) error) (domain.TransferRequest, error) {
	var request domain.TransferRequest
	var expiresAt, createdAt, updatedAt int64
	var acceptedAt, declinedAt, cancelledAt, deletedAt sql.NullInt64

	err := scan(
		&request.ID,
		&request.OrganizationID,
		&request.CurrentOwnerUserID,
		&request.NewOwnerUserID,
		&request.Token,
		&request.Message,
		&expiresAt,
		&acceptedAt,
		&declinedAt,
		&cancelledAt,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TransferRequest{}, domain.ErrNotFound
		}
		return domain.TransferRequest{}, fmt.Errorf("scan transfer request: %w", err)
	}

	request.ExpiresAt = fromMillis(expiresAt)
	request.AcceptedAt = fromNullMillis(acceptedAt)
	request.DeclinedAt = fromNullMillis(declinedAt)
	request.CancelledAt = fromNullMillis(cancelledAt)
	request.CreatedAt = fromMillis(createdAt)
	request.UpdatedAt = fromMillis(updatedAt)
	request.DeletedAt = fromNullMillis(deletedAt)
	return request, nil
}

func putTransferExec(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, request domain.TransferRequest) error {
	_, err := execer.ExecContext(
		ctx,
		`INSERT INTO transfer_requests (`+transferColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   token = excluded.token,
		   expires_at = excluded.expires_at,
		   accepted_at = excluded.accepted_at,
		   declined_at = excluded.declined_at,
		   cancelled_at = excluded.cancelled_at,
		   updated_at = excluded.updated_at,
		   deleted_at = excluded.deleted_at`,
		transferArgs(request)...,
	)
	return err
}

// PutTransferRequest upserts one transfer request row by ID.
func (s *Store) PutTransferRequest(ctx context.Context, request domain.TransferRequest) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(request.ID) == "" {
		return fmt.Errorf("transfer request id is required")
	}
	if err := putTransferExec(ctx, s.sqlDB, request); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put transfer request: %w", err)
	}
	return nil
}

// CreateTransferRequestSuperseding inserts a fresh transfer request,
// retiring any expired pending request for the organization in the same
// transaction. The partial unique index turns a racing insert into
// domain.ErrConflict.
func (s *Store) CreateTransferRequestSuperseding(ctx context.Context, request domain.TransferRequest, now time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(request.ID) == "" {
		return fmt.Errorf("transfer request id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer create: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback transfer create: %v", cause, rollbackErr)
		}
		return cause
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE transfer_requests SET deleted_at = ?, updated_at = ?
		 WHERE organization_id = ?
		   AND accepted_at IS NULL AND declined_at IS NULL AND cancelled_at IS NULL AND deleted_at IS NULL
		   AND expires_at < ?`,
		toMillis(now),
		toMillis(now),
		request.OrganizationID,
		toMillis(now),
	)
	if err != nil {
		return rollbackWith(fmt.Errorf("retire expired transfer requests: %w", err))
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO transfer_requests (`+transferColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transferArgs(request)...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return rollbackWith(domain.ErrConflict)
		}
		return rollbackWith(fmt.Errorf("insert transfer request: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer create: %w", err)
	}
	return nil
}

// ApplyTransferAcceptance atomically persists the accepted request, the
// organization's new owner, and the membership rotation.
func (s *Store) ApplyTransferAcceptance(ctx context.Context, acceptance domain.TransferAcceptance) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	settingsJSON, err := encodeSettings(acceptance.Organization.Settings)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer accept: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback transfer accept: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := putTransferExec(ctx, tx, acceptance.Request); err != nil {
		return rollbackWith(fmt.Errorf("put transfer request: %w", err))
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE organizations SET owner_user_id = ?, settings_json = ?, updated_at = ?
		 WHERE id = ?`,
		acceptance.Organization.OwnerUserID,
		settingsJSON,
		toMillis(acceptance.Organization.UpdatedAt),
		acceptance.Organization.ID,
	)
	if err != nil {
		return rollbackWith(fmt.Errorf("update organization owner: %w", err))
	}

	memberships := []domain.Membership{acceptance.Demoted}
	if acceptance.Promoted != nil {
		memberships = append(memberships, *acceptance.Promoted)
	}
	for _, membership := range memberships {
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
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer accept: %w", err)
	}
	return nil
}

// GetTransferRequest returns one live transfer request by ID.
func (s *Store) GetTransferRequest(ctx context.Context, requestID string) (domain.TransferRequest, error) {
	if err := s.ready(ctx); err != nil {
		return domain.TransferRequest{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+transferColumns+` FROM transfer_requests
		 WHERE id = ? AND deleted_at IS NULL`,
		requestID,
	)
	return scanTransferRow(row.Scan)
}

// GetTransferRequestByToken returns one live transfer request by its token.
func (s *Store) GetTransferRequestByToken(ctx context.Context, token string) (domain.TransferRequest, error) {
	if err := s.ready(ctx); err != nil {
		return domain.TransferRequest{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+transferColumns+` FROM transfer_requests
		 WHERE token = ? AND deleted_at IS NULL`,
		token,
	)
	return scanTransferRow(row.Scan)
}

// FindPendingTransfer returns the organization's actionable transfer
// request at now, or domain.ErrNotFound.
func (s *Store) FindPendingTransfer(ctx context.Context, organizationID string, now time.Time) (domain.TransferRequest, error) {
	if err := s.ready(ctx); err != nil {
		return domain.TransferRequest{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+transferColumns+` FROM transfer_requests
		 WHERE organization_id = ?
		   AND accepted_at IS NULL AND declined_at IS NULL AND cancelled_at IS NULL AND deleted_at IS NULL
		   AND expires_at >= ?`,
		organizationID,
		toMillis(now),
	)
	return scanTransferRow(row.Scan)
}
