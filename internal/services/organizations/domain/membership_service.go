package domain

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/orgspace/internal/errors"
)

var (
	// ErrAlreadyMember indicates the user already holds a membership row.
	ErrAlreadyMember = apperrors.New(apperrors.CodeMembershipAlreadyExists, "This user is already a member of the organization.")
	// ErrMemberNotFound indicates no membership row exists for the user.
	ErrMemberNotFound = apperrors.New(apperrors.CodeMembershipNotFound, "This user is not a member of the organization.")
	// ErrInvalidRole indicates a role outside the grantable set.
	ErrInvalidRole = apperrors.New(apperrors.CodeMembershipInvalidRole, "Invalid organization role specified")
)

// AddMember creates a membership row for the user. An existing row is
// rejected, never overwritten; use UpdateMemberRole or SetMemberActive to
// change one. The owner role cannot be granted here, only through the
// transfer workflow.
func (s *Service) AddMember(ctx context.Context, organizationID, userID string, role Role, active bool) (Membership, error) {
	if s.store == nil {
		return Membership{}, ErrStoreNotConfigured
	}
	if !role.Valid() || role == RoleOwner {
		return Membership{}, ErrInvalidRole
	}

	if _, err := s.store.GetOrganization(ctx, organizationID); err != nil {
		return Membership{}, err
	}

	if _, err := s.store.GetMembership(ctx, organizationID, userID); err == nil {
		return Membership{}, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return Membership{}, fmt.Errorf("get membership: %w", err)
	}

	membership := NewMembership(organizationID, userID, role, active, s.nowUTC())
	if err := s.store.CreateMembership(ctx, membership); err != nil {
		if errors.Is(err, ErrConflict) {
			return Membership{}, ErrAlreadyMember
		}
		return Membership{}, fmt.Errorf("create membership: %w", err)
	}
	return membership, nil
}

// RemoveMember deletes the user's membership row.
func (s *Service) RemoveMember(ctx context.Context, organizationID, userID string) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	if _, err := s.store.GetMembership(ctx, organizationID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("get membership: %w", err)
	}
	if err := s.store.DeleteMembership(ctx, organizationID, userID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

// UpdateMemberRole changes the role on an existing membership row. The owner
// role cannot be granted here.
func (s *Service) UpdateMemberRole(ctx context.Context, organizationID, userID string, role Role) (Membership, error) {
	if s.store == nil {
		return Membership{}, ErrStoreNotConfigured
	}
	if !role.Valid() || role == RoleOwner {
		return Membership{}, ErrInvalidRole
	}

	membership, err := s.store.GetMembership(ctx, organizationID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Membership{}, ErrMemberNotFound
		}
		return Membership{}, fmt.Errorf("get membership: %w", err)
	}

	membership.Role = role
	membership.UpdatedAt = s.nowUTC()
	if err := s.store.PutMembership(ctx, membership); err != nil {
		return Membership{}, fmt.Errorf("put membership: %w", err)
	}
	return membership, nil
}

// SetMemberActive toggles the active flag on an existing membership row.
func (s *Service) SetMemberActive(ctx context.Context, organizationID, userID string, active bool) (Membership, error) {
	if s.store == nil {
		return Membership{}, ErrStoreNotConfigured
	}

	membership, err := s.store.GetMembership(ctx, organizationID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Membership{}, ErrMemberNotFound
		}
		return Membership{}, fmt.Errorf("get membership: %w", err)
	}

	membership.Active = active
	membership.UpdatedAt = s.nowUTC()
	if err := s.store.PutMembership(ctx, membership); err != nil {
		return Membership{}, fmt.Errorf("put membership: %w", err)
	}
	return membership, nil
}

// MemberRole resolves the user's effective role in the organization. An
// explicit membership row wins; the organization owner holds RoleOwner even
// without a row. The boolean reports whether the user has any role at all.
func (s *Service) MemberRole(ctx context.Context, organizationID, userID string) (Role, bool, error) {
	if s.store == nil {
		return RoleUnspecified, false, ErrStoreNotConfigured
	}

	membership, err := s.store.GetMembership(ctx, organizationID, userID)
	if err == nil {
		return membership.Role, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return RoleUnspecified, false, fmt.Errorf("get membership: %w", err)
	}

	organization, err := s.store.GetOrganization(ctx, organizationID)
	if err != nil {
		return RoleUnspecified, false, err
	}
	if organization.IsOwnedBy(userID) {
		return RoleOwner, true, nil
	}
	return RoleUnspecified, false, nil
}

// HasMember reports whether the user has any role in the organization,
// including synthetic ownership.
func (s *Service) HasMember(ctx context.Context, organizationID, userID string) (bool, error) {
	_, ok, err := s.MemberRole(ctx, organizationID, userID)
	return ok, err
}

// HasActiveMember reports whether the user has an active membership row or
// owns the organization.
func (s *Service) HasActiveMember(ctx context.Context, organizationID, userID string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreNotConfigured
	}

	membership, err := s.store.GetMembership(ctx, organizationID, userID)
	if err == nil {
		return membership.Active, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("get membership: %w", err)
	}

	organization, err := s.store.GetOrganization(ctx, organizationID)
	if err != nil {
		return false, err
	}
	return organization.IsOwnedBy(userID), nil
}

// ListMembers returns the organization's active membership rows.
func (s *Service) ListMembers(ctx context.Context, organizationID string) ([]Membership, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListActiveMemberships(ctx, organizationID)
}
