package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/orgspace/internal/errors"
)

var (
	// ErrInvitationInvalidEmail indicates the invitee address failed syntax validation.
	ErrInvitationInvalidEmail = apperrors.New(apperrors.CodeInvitationInvalidEmail, "Invalid email address")
	// ErrActiveInvitationExists indicates an actionable invitation already
	// covers the (organization, email) pair.
	ErrActiveInvitationExists = apperrors.New(apperrors.CodeInvitationActiveExists, "An active invitation already exists")
	// ErrInvitationAccepted indicates the invitation reached the accepted terminal state.
	ErrInvitationAccepted = apperrors.New(apperrors.CodeInvitationAlreadyAccepted, "This invitation has already been accepted.")
	// ErrInvitationDeclined indicates the invitation reached the declined terminal state.
	ErrInvitationDeclined = apperrors.New(apperrors.CodeInvitationAlreadyDeclined, "This invitation has already been declined.")
	// ErrInvitationExpired indicates the invitation's expiry has passed.
	ErrInvitationExpired = apperrors.New(apperrors.CodeInvitationExpired, "This invitation has expired.")
	// ErrEmailMismatch indicates the accepting user's email differs from the invitee's.
	ErrEmailMismatch = apperrors.New(apperrors.CodeInvitationEmailMismatch, "The email address does not match the invitation.")
	// ErrInvitationTokenNotFound indicates no invitation carries the presented token.
	ErrInvitationTokenNotFound = apperrors.New(apperrors.CodeInvitationTokenNotFound, "Invalid invitation token.")
	// ErrInvitationRoleNotGrantable indicates an attempt to invite someone as owner.
	ErrInvitationRoleNotGrantable = apperrors.New(apperrors.CodeInvitationRoleNotGrantable, "Invitations cannot grant the owner role.")
)

// SendInvitationInput describes a new invitation. Role defaults to
// RoleMember and TTL to DefaultInvitationTTL when zero.
type SendInvitationInput struct {
	OrganizationID  string
	InvitedByUserID string
	Email           string
	Role            Role
	TTL             time.Duration
}

// SendInvitation creates and persists an invitation for an email address to
// join the organization. An expired pending invitation for the same address
// is superseded; an actionable one blocks the send. The store's active-key
// constraint closes the check-then-insert race.
func (s *Service) SendInvitation(ctx context.Context, input SendInvitationInput) (Invitation, error) {
	if s.store == nil {
		return Invitation{}, ErrStoreNotConfigured
	}

	organization, err := s.store.GetOrganization(ctx, input.OrganizationID)
	if err != nil {
		return Invitation{}, err
	}

	email := normalizeEmail(input.Email)
	if !validEmailAddress(email) {
		return Invitation{}, apperrors.Newf(apperrors.CodeInvitationInvalidEmail, "Invalid email address: %s", input.Email).
			WithMetadata(map[string]string{"Email": input.Email})
	}

	role := input.Role
	if role == RoleUnspecified {
		role = RoleMember
	}
	if !role.Valid() {
		return Invitation{}, ErrInvalidRole
	}
	if role == RoleOwner {
		return Invitation{}, ErrInvitationRoleNotGrantable
	}

	now := s.nowUTC()

	if s.users != nil {
		user, err := s.users.FindUserByEmail(ctx, email)
		switch {
		case err == nil:
			active, err := s.HasActiveMember(ctx, organization.ID, user.ID)
			if err != nil {
				return Invitation{}, err
			}
			if active {
				return Invitation{}, apperrors.Newf(apperrors.CodeInvitationAlreadyMember, "User with email %s is already a member of this organization.", email).
					WithMetadata(map[string]string{"Email": email})
			}
		case errors.Is(err, ErrNotFound):
			// Unknown address; invitation doubles as a signup prompt.
		default:
			return Invitation{}, fmt.Errorf("find user by email: %w", err)
		}
	}

	if _, err := s.store.FindActiveInvitation(ctx, organization.ID, email, now); err == nil {
		return Invitation{}, activeInvitationExists(email)
	} else if !errors.Is(err, ErrNotFound) {
		return Invitation{}, fmt.Errorf("find active invitation: %w", err)
	}

	invitationID, err := s.newID()
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}
	tok, err := s.newToken(InvitationTokenLength)
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation token: %w", err)
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}

	invitation := Invitation{
		ID:              invitationID,
		OrganizationID:  organization.ID,
		InvitedByUserID: input.InvitedByUserID,
		Email:           email,
		Role:            role,
		Token:           tok,
		ExpiresAt:       now.Add(ttl),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateInvitationSuperseding(ctx, invitation, now); err != nil {
		if errors.Is(err, ErrConflict) {
			return Invitation{}, activeInvitationExists(email)
		}
		return Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	s.emit(ctx, Event{
		Name:             EventInvitationSent,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      input.InvitedByUserID,
		RecipientEmail:   email,
		Invitation:       &invitation,
	})
	return invitation, nil
}

// AcceptInvitation marks the invitation accepted by the user and grants the
// invited role, committing both writes atomically.
func (s *Service) AcceptInvitation(ctx context.Context, invitationID, userID string) (Invitation, error) {
	if s.store == nil {
		return Invitation{}, ErrStoreNotConfigured
	}
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return Invitation{}, err
	}
	return s.acceptInvitation(ctx, invitation, userID)
}

// AcceptInvitationByToken resolves an invitation from an email-link token
// and accepts it as the user.
func (s *Service) AcceptInvitationByToken(ctx context.Context, token, userID string) (Invitation, error) {
	invitation, err := s.invitationByToken(ctx, token)
	if err != nil {
		return Invitation{}, err
	}
	return s.acceptInvitation(ctx, invitation, userID)
}

func (s *Service) acceptInvitation(ctx context.Context, invitation Invitation, userID string) (Invitation, error) {
	now := s.nowUTC()
	if err := invitationActionable(invitation, now); err != nil {
		return Invitation{}, err
	}

	if s.users != nil {
		user, err := s.users.GetUser(ctx, userID)
		if err != nil {
			return Invitation{}, err
		}
		if normalizeEmail(user.Email) != normalizeEmail(invitation.Email) {
			return Invitation{}, ErrEmailMismatch
		}
	}

	active, err := s.HasActiveMember(ctx, invitation.OrganizationID, userID)
	if err != nil {
		return Invitation{}, err
	}
	if active {
		return Invitation{}, ErrAlreadyMember
	}

	organization, err := s.store.GetOrganization(ctx, invitation.OrganizationID)
	if err != nil {
		return Invitation{}, err
	}

	invitation.AcceptedAt = &now
	invitation.AcceptedByUserID = userID
	invitation.UpdatedAt = now
	membership := NewMembership(invitation.OrganizationID, userID, invitation.Role, true, now)

	if err := s.store.AcceptInvitation(ctx, invitation, membership); err != nil {
		if errors.Is(err, ErrConflict) {
			return Invitation{}, ErrAlreadyMember
		}
		return Invitation{}, fmt.Errorf("accept invitation: %w", err)
	}

	s.emit(ctx, Event{
		Name:             EventInvitationAccepted,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      userID,
		RecipientEmail:   invitation.Email,
		Invitation:       &invitation,
	})
	return invitation, nil
}

// DeclineInvitation marks the invitation declined. Possession of the
// invitation is the only credential; no identity check is made, so the
// invitee can decline before ever creating an account.
func (s *Service) DeclineInvitation(ctx context.Context, invitationID string) (Invitation, error) {
	if s.store == nil {
		return Invitation{}, ErrStoreNotConfigured
	}
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return Invitation{}, err
	}
	return s.declineInvitation(ctx, invitation)
}

// DeclineInvitationByToken resolves an invitation from an email-link token
// and declines it.
func (s *Service) DeclineInvitationByToken(ctx context.Context, token string) (Invitation, error) {
	invitation, err := s.invitationByToken(ctx, token)
	if err != nil {
		return Invitation{}, err
	}
	return s.declineInvitation(ctx, invitation)
}

func (s *Service) declineInvitation(ctx context.Context, invitation Invitation) (Invitation, error) {
	now := s.nowUTC()
	if err := invitationActionable(invitation, now); err != nil {
		return Invitation{}, err
	}

	organization, err := s.store.GetOrganization(ctx, invitation.OrganizationID)
	if err != nil {
		return Invitation{}, err
	}

	invitation.DeclinedAt = &now
	invitation.UpdatedAt = now
	if err := s.store.PutInvitation(ctx, invitation); err != nil {
		return Invitation{}, fmt.Errorf("put invitation: %w", err)
	}

	s.emit(ctx, Event{
		Name:             EventInvitationDeclined,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		RecipientEmail:   invitation.Email,
		Invitation:       &invitation,
	})
	return invitation, nil
}

// ResendInvitation reissues the token and expiry on a pending invitation.
// An expired pending invitation is exactly what resend repairs; only the
// terminal states block it.
func (s *Service) ResendInvitation(ctx context.Context, invitationID string, ttl time.Duration) (Invitation, error) {
	if s.store == nil {
		return Invitation{}, ErrStoreNotConfigured
	}

	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return Invitation{}, err
	}
	if invitation.IsAccepted() {
		return Invitation{}, apperrors.New(apperrors.CodeInvitationAlreadyAccepted, "Cannot resend an invitation that has been accepted.")
	}
	if invitation.IsDeclined() {
		return Invitation{}, apperrors.New(apperrors.CodeInvitationAlreadyDeclined, "Cannot resend an invitation that has been declined.")
	}

	organization, err := s.store.GetOrganization(ctx, invitation.OrganizationID)
	if err != nil {
		return Invitation{}, err
	}

	tok, err := s.newToken(InvitationTokenLength)
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation token: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}

	now := s.nowUTC()
	invitation.Token = tok
	invitation.ExpiresAt = now.Add(ttl)
	invitation.UpdatedAt = now
	if err := s.store.PutInvitation(ctx, invitation); err != nil {
		return Invitation{}, fmt.Errorf("put invitation: %w", err)
	}

	s.emit(ctx, Event{
		Name:             EventInvitationSent,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      invitation.InvitedByUserID,
		RecipientEmail:   invitation.Email,
		Invitation:       &invitation,
	})
	return invitation, nil
}

func (s *Service) invitationByToken(ctx context.Context, token string) (Invitation, error) {
	if s.store == nil {
		return Invitation{}, ErrStoreNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return Invitation{}, ErrInvitationTokenNotFound
	}
	invitation, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Invitation{}, ErrInvitationTokenNotFound
		}
		return Invitation{}, fmt.Errorf("get invitation by token: %w", err)
	}
	return invitation, nil
}

// invitationActionable gates accept and decline: terminal states first so
// their messages win over expiry, then the expiry check.
func invitationActionable(invitation Invitation, now time.Time) error {
	if invitation.IsAccepted() {
		return ErrInvitationAccepted
	}
	if invitation.IsDeclined() {
		return ErrInvitationDeclined
	}
	if invitation.IsExpired(now) {
		return ErrInvitationExpired
	}
	return nil
}

func activeInvitationExists(email string) error {
	return apperrors.Newf(apperrors.CodeInvitationActiveExists, "An active invitation already exists for %s.", email).
		WithMetadata(map[string]string{"Email": email})
}
