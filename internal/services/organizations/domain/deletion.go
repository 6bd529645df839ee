package domain

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/orgspace/internal/errors"
)

var (
	// ErrDeleteNotOwner indicates a non-owner tried to delete the organization.
	ErrDeleteNotOwner = apperrors.New(apperrors.CodeDeleteNotOwner, "Only the organization owner can delete the organization.")
	// ErrDeleteOnlyOrganization indicates deleting would leave the owner with
	// no organization at all.
	ErrDeleteOnlyOrganization = apperrors.New(apperrors.CodeDeleteOnlyOrg, "Cannot delete your only organization. You must have at least one organization.")
	// ErrDeleteCurrentOrganization indicates the owner's active context still
	// points at the organization.
	ErrDeleteCurrentOrganization = apperrors.New(apperrors.CodeDeleteCurrentOrg, "Cannot delete your current organization. Please switch to another organization first.")
	// ErrDeleteHasActiveMembers indicates members besides the owner remain.
	ErrDeleteHasActiveMembers = apperrors.New(apperrors.CodeDeleteHasActiveMember, "Cannot delete organization with active members. Remove all members first.")
)

// DeletionDecision reports whether an organization may be deleted. Reason is
// nil when Allowed and carries the first failing check otherwise.
type DeletionDecision struct {
	Allowed bool
	Reason  error
}

// DeletionResult identifies the organization removed by DeleteOrganization.
type DeletionResult struct {
	DeletedID   string
	DeletedName string
}

// CanDeleteOrganization evaluates the deletion guard without mutating
// anything. Checks run in a fixed order and stop at the first failure: the
// ownership check comes before any state checks so non-owners learn nothing
// about the organization. currentOrgID is the caller's active organization
// context, passed explicitly.
func (s *Service) CanDeleteOrganization(ctx context.Context, organizationID, userID, currentOrgID string) (DeletionDecision, error) {
	if s.store == nil {
		return DeletionDecision{}, ErrStoreNotConfigured
	}

	organization, err := s.store.GetOrganization(ctx, organizationID)
	if err != nil {
		return DeletionDecision{}, err
	}

	if !organization.IsOwnedBy(userID) {
		return DeletionDecision{Reason: ErrDeleteNotOwner}, nil
	}

	count, err := s.store.CountOrganizationsForUser(ctx, userID)
	if err != nil {
		return DeletionDecision{}, fmt.Errorf("count organizations: %w", err)
	}
	if count <= 1 {
		return DeletionDecision{Reason: ErrDeleteOnlyOrganization}, nil
	}

	if currentOrgID != "" && currentOrgID == organization.ID {
		return DeletionDecision{Reason: ErrDeleteCurrentOrganization}, nil
	}

	active, err := s.store.CountActiveMemberships(ctx, organization.ID, organization.OwnerUserID)
	if err != nil {
		return DeletionDecision{}, fmt.Errorf("count active memberships: %w", err)
	}
	if active > 0 {
		return DeletionDecision{Reason: ErrDeleteHasActiveMembers}, nil
	}

	return DeletionDecision{Allowed: true}, nil
}

// DeleteOrganization removes the organization after the guard allows it.
// The row and its memberships are deleted outright, not soft-deleted;
// invitation and transfer history goes with them.
func (s *Service) DeleteOrganization(ctx context.Context, organizationID, userID, currentOrgID string) (DeletionResult, error) {
	if s.store == nil {
		return DeletionResult{}, ErrStoreNotConfigured
	}

	organization, err := s.store.GetOrganization(ctx, organizationID)
	if err != nil {
		return DeletionResult{}, err
	}

	decision, err := s.CanDeleteOrganization(ctx, organizationID, userID, currentOrgID)
	if err != nil {
		return DeletionResult{}, err
	}
	if !decision.Allowed {
		return DeletionResult{}, decision.Reason
	}

	if err := s.store.DeleteOrganization(ctx, organization.ID); err != nil {
		return DeletionResult{}, fmt.Errorf("delete organization: %w", err)
	}
	return DeletionResult{DeletedID: organization.ID, DeletedName: organization.Name}, nil
}
