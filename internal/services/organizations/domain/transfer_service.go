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
	// ErrTransferNotOwner indicates the actor does not own the organization.
	ErrTransferNotOwner = apperrors.New(apperrors.CodeTransferNotOwner, "Only the current owner can initiate an ownership transfer.")
	// ErrTransferToSelf indicates the owner tried to transfer to themselves.
	ErrTransferToSelf = apperrors.New(apperrors.CodeTransferToSelf, "Cannot transfer ownership to yourself.")
	// ErrPendingTransferExists indicates the organization already has an
	// actionable transfer request.
	ErrPendingTransferExists = apperrors.New(apperrors.CodeTransferPendingExists, "There is already a pending transfer request for this organization. Please cancel it first.")
	// ErrNotTransferRecipient indicates the actor is not the proposed new owner.
	ErrNotTransferRecipient = apperrors.New(apperrors.CodeTransferNotRecipient, "Only the intended new owner can respond to this transfer request.")
	// ErrTransferExpired indicates the request's expiry has passed.
	ErrTransferExpired = apperrors.New(apperrors.CodeTransferExpired, "This transfer request has expired.")
	// ErrTransferAccepted indicates the request reached the accepted terminal state.
	ErrTransferAccepted = apperrors.New(apperrors.CodeTransferAlreadyAccepted, "This transfer request has already been accepted.")
	// ErrTransferDeclined indicates the request reached the declined terminal state.
	ErrTransferDeclined = apperrors.New(apperrors.CodeTransferAlreadyDeclined, "This transfer request has already been declined.")
	// ErrTransferCancelled indicates the request reached the cancelled terminal state.
	ErrTransferCancelled = apperrors.New(apperrors.CodeTransferAlreadyCancelled, "This transfer request has been cancelled.")
	// ErrTransferTokenNotFound indicates no request carries the presented token.
	ErrTransferTokenNotFound = apperrors.New(apperrors.CodeTransferTokenNotFound, "Invalid transfer request token.")
)

// InitiateTransferInput describes a new ownership transfer request. TTL
// defaults to DefaultTransferTTL when zero.
type InitiateTransferInput struct {
	OrganizationID     string
	CurrentOwnerUserID string
	NewOwnerUserID     string
	Message            string
	TTL                time.Duration
}

// InitiateTransfer creates a pending ownership transfer request. One
// actionable request exists per organization at a time; the store's active
// key constraint closes the check-then-insert race.
func (s *Service) InitiateTransfer(ctx context.Context, input InitiateTransferInput) (TransferRequest, error) {
	if s.store == nil {
		return TransferRequest{}, ErrStoreNotConfigured
	}

	organization, err := s.store.GetOrganization(ctx, input.OrganizationID)
	if err != nil {
		return TransferRequest{}, err
	}
	if !organization.IsOwnedBy(input.CurrentOwnerUserID) {
		return TransferRequest{}, ErrTransferNotOwner
	}
	if input.NewOwnerUserID == "" || input.NewOwnerUserID == input.CurrentOwnerUserID {
		return TransferRequest{}, ErrTransferToSelf
	}

	var recipientEmail string
	if s.users != nil {
		recipient, err := s.users.GetUser(ctx, input.NewOwnerUserID)
		if err != nil {
			return TransferRequest{}, err
		}
		recipientEmail = recipient.Email
	}

	now := s.nowUTC()
	if _, err := s.store.FindPendingTransfer(ctx, organization.ID, now); err == nil {
		return TransferRequest{}, ErrPendingTransferExists
	} else if !errors.Is(err, ErrNotFound) {
		return TransferRequest{}, fmt.Errorf("find pending transfer: %w", err)
	}

	requestID, err := s.newID()
	if err != nil {
		return TransferRequest{}, fmt.Errorf("generate transfer request id: %w", err)
	}
	tok, err := s.newToken(TransferTokenLength)
	if err != nil {
		return TransferRequest{}, fmt.Errorf("generate transfer token: %w", err)
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultTransferTTL
	}

	request := TransferRequest{
		ID:                 requestID,
		OrganizationID:     organization.ID,
		CurrentOwnerUserID: input.CurrentOwnerUserID,
		NewOwnerUserID:     input.NewOwnerUserID,
		Token:              tok,
		Message:            strings.TrimSpace(input.Message),
		ExpiresAt:          now.Add(ttl),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateTransferRequestSuperseding(ctx, request, now); err != nil {
		if errors.Is(err, ErrConflict) {
			return TransferRequest{}, ErrPendingTransferExists
		}
		return TransferRequest{}, fmt.Errorf("create transfer request: %w", err)
	}

	s.emit(ctx, Event{
		Name:             EventTransferRequested,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      input.CurrentOwnerUserID,
		RecipientEmail:   recipientEmail,
		Transfer:         &request,
	})
	return request, nil
}

// AcceptTransfer makes the recipient the organization's owner. The request,
// the organization, and both membership rows change in one transaction: the
// prior owner is demoted to administrator and the new owner's row, when one
// exists, is promoted.
func (s *Service) AcceptTransfer(ctx context.Context, requestID, userID string) (TransferRequest, error) {
	if s.store == nil {
		return TransferRequest{}, ErrStoreNotConfigured
	}
	request, err := s.store.GetTransferRequest(ctx, requestID)
	if err != nil {
		return TransferRequest{}, err
	}
	return s.acceptTransfer(ctx, request, userID)
}

// AcceptTransferByToken resolves a request from an email-link token and
// accepts it as the user.
func (s *Service) AcceptTransferByToken(ctx context.Context, token, userID string) (TransferRequest, error) {
	request, err := s.transferByToken(ctx, token)
	if err != nil {
		return TransferRequest{}, err
	}
	return s.acceptTransfer(ctx, request, userID)
}

func (s *Service) acceptTransfer(ctx context.Context, request TransferRequest, userID string) (TransferRequest, error) {
	if request.NewOwnerUserID != userID {
		return TransferRequest{}, ErrNotTransferRecipient
	}
	now := s.nowUTC()
	if err := transferActionable(request, now); err != nil {
		return TransferRequest{}, err
	}

	organization, err := s.store.GetOrganization(ctx, request.OrganizationID)
	if err != nil {
		return TransferRequest{}, err
	}

	priorOwnerID := organization.OwnerUserID
	request.AcceptedAt = &now
	request.UpdatedAt = now
	organization.OwnerUserID = request.NewOwnerUserID
	organization.UpdatedAt = now

	demoted, err := s.store.GetMembership(ctx, organization.ID, priorOwnerID)
	switch {
	case err == nil:
		demoted.Role = RoleAdministrator
		demoted.UpdatedAt = now
	case errors.Is(err, ErrNotFound):
		demoted = NewMembership(organization.ID, priorOwnerID, RoleAdministrator, true, now)
	default:
		return TransferRequest{}, fmt.Errorf("get membership: %w", err)
	}

	var promoted *Membership
	if membership, err := s.store.GetMembership(ctx, organization.ID, request.NewOwnerUserID); err == nil {
		membership.Role = RoleOwner
		membership.Active = true
		membership.UpdatedAt = now
		promoted = &membership
	} else if !errors.Is(err, ErrNotFound) {
		return TransferRequest{}, fmt.Errorf("get membership: %w", err)
	}

	acceptance := TransferAcceptance{
		Request:      request,
		Organization: organization,
		Demoted:      demoted,
		Promoted:     promoted,
	}
	if err := s.store.ApplyTransferAcceptance(ctx, acceptance); err != nil {
		return TransferRequest{}, fmt.Errorf("apply transfer acceptance: %w", err)
	}

	var recipientEmail string
	if s.users != nil {
		if priorOwner, err := s.users.GetUser(ctx, priorOwnerID); err == nil {
			recipientEmail = priorOwner.Email
		}
	}
	s.emit(ctx, Event{
		Name:             EventTransferAccepted,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      userID,
		RecipientEmail:   recipientEmail,
		Transfer:         &request,
	})
	return request, nil
}

// DeclineTransfer marks the request declined by its recipient.
func (s *Service) DeclineTransfer(ctx context.Context, requestID, userID string) (TransferRequest, error) {
	if s.store == nil {
		return TransferRequest{}, ErrStoreNotConfigured
	}
	request, err := s.store.GetTransferRequest(ctx, requestID)
	if err != nil {
		return TransferRequest{}, err
	}
	return s.declineTransfer(ctx, request, userID)
}

// DeclineTransferByToken resolves a request from an email-link token and
// declines it as the user.
func (s *Service) DeclineTransferByToken(ctx context.Context, token, userID string) (TransferRequest, error) {
	request, err := s.transferByToken(ctx, token)
	if err != nil {
		return TransferRequest{}, err
	}
	return s.declineTransfer(ctx, request, userID)
}

func (s *Service) declineTransfer(ctx context.Context, request TransferRequest, userID string) (TransferRequest, error) {
	if request.NewOwnerUserID != userID {
		return TransferRequest{}, ErrNotTransferRecipient
	}
	now := s.nowUTC()
	if err := transferActionable(request, now); err != nil {
		return TransferRequest{}, err
	}

	organization, err := s.store.GetOrganization(ctx, request.OrganizationID)
	if err != nil {
		return TransferRequest{}, err
	}

	request.DeclinedAt = &now
	request.UpdatedAt = now
	if err := s.store.PutTransferRequest(ctx, request); err != nil {
		return TransferRequest{}, fmt.Errorf("put transfer request: %w", err)
	}

	var recipientEmail string
	if s.users != nil {
		if owner, err := s.users.GetUser(ctx, request.CurrentOwnerUserID); err == nil {
			recipientEmail = owner.Email
		}
	}
	s.emit(ctx, Event{
		Name:             EventTransferDeclined,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      userID,
		RecipientEmail:   recipientEmail,
		Transfer:         &request,
	})
	return request, nil
}

// CancelTransfer withdraws a request before the recipient acts on it. Only
// the requesting owner can cancel, and expiry does not block cancellation;
// an expired pending request can still be tidied up.
func (s *Service) CancelTransfer(ctx context.Context, requestID, userID string) (TransferRequest, error) {
	if s.store == nil {
		return TransferRequest{}, ErrStoreNotConfigured
	}

	request, err := s.store.GetTransferRequest(ctx, requestID)
	if err != nil {
		return TransferRequest{}, err
	}
	if request.CurrentOwnerUserID != userID {
		return TransferRequest{}, apperrors.New(apperrors.CodeTransferNotOwner, "Only the current owner can cancel this transfer request.")
	}
	if request.IsAccepted() {
		return TransferRequest{}, ErrTransferAccepted
	}
	if request.IsDeclined() {
		return TransferRequest{}, ErrTransferDeclined
	}
	if request.IsCancelled() {
		return TransferRequest{}, ErrTransferCancelled
	}

	organization, err := s.store.GetOrganization(ctx, request.OrganizationID)
	if err != nil {
		return TransferRequest{}, err
	}

	now := s.nowUTC()
	request.CancelledAt = &now
	request.UpdatedAt = now
	if err := s.store.PutTransferRequest(ctx, request); err != nil {
		return TransferRequest{}, fmt.Errorf("put transfer request: %w", err)
	}

	var recipientEmail string
	if s.users != nil {
		if recipient, err := s.users.GetUser(ctx, request.NewOwnerUserID); err == nil {
			recipientEmail = recipient.Email
		}
	}
	s.emit(ctx, Event{
		Name:             EventTransferCancelled,
		OrganizationID:   organization.ID,
		OrganizationName: organization.Name,
		ActorUserID:      userID,
		RecipientEmail:   recipientEmail,
		Transfer:         &request,
	})
	return request, nil
}

func (s *Service) transferByToken(ctx context.Context, token string) (TransferRequest, error) {
	if s.store == nil {
		return TransferRequest{}, ErrStoreNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return TransferRequest{}, ErrTransferTokenNotFound
	}
	request, err := s.store.GetTransferRequestByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TransferRequest{}, ErrTransferTokenNotFound
		}
		return TransferRequest{}, fmt.Errorf("get transfer request by token: %w", err)
	}
	return request, nil
}

// transferActionable gates accept and decline: terminal states first so
// their messages win over expiry, then the expiry check.
func transferActionable(request TransferRequest, now time.Time) error {
	if request.IsAccepted() {
		return ErrTransferAccepted
	}
	if request.IsDeclined() {
		return ErrTransferDeclined
	}
	if request.IsCancelled() {
		return ErrTransferCancelled
	}
	if request.IsExpired(now) {
		return ErrTransferExpired
	}
	return nil
}
