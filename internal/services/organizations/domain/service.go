package domain

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/louisbranch/orgspace/internal/errors"
	"github.com/louisbranch/orgspace/internal/platform/id"
	"github.com/louisbranch/orgspace/internal/platform/token"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "The requested resource was not found")
	// ErrConflict indicates a write collided with a uniqueness constraint.
	ErrConflict = apperrors.New(apperrors.CodeConflict, "A conflicting record already exists")

	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("organization store is not configured")
	// ErrUserDirectoryNotConfigured indicates the service is missing user lookup wiring.
	ErrUserDirectoryNotConfigured = errors.New("user directory is not configured")
)

// User is the projection of an identity the workflows need.
type User struct {
	ID    string
	Email string
	Name  string
}

// UserDirectory resolves identities owned by the auth service.
type UserDirectory interface {
	// GetUser returns the user with the given ID, or ErrNotFound.
	GetUser(ctx context.Context, userID string) (User, error)
	// FindUserByEmail returns the user with the given email address,
	// matched case-insensitively, or ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (User, error)
}

// TransferAcceptance bundles the writes applied atomically when an
// ownership transfer is accepted.
type TransferAcceptance struct {
	Request      TransferRequest
	Organization Organization
	// Demoted is the prior owner's membership row, upserted as administrator.
	Demoted Membership
	// Promoted, when set, is the new owner's existing membership row
	// updated to carry the owner role.
	Promoted *Membership
}

// Store is the domain persistence boundary for organization lifecycle state.
//
// Multi-row methods (AcceptInvitation, ApplyTransferAcceptance,
// DeleteOrganization, the superseding creates) must be atomic: either every
// write commits or none do. Uniqueness of the active invitation and pending
// transfer keys is enforced by the store, surfacing ErrConflict.
type Store interface {
	GetOrganization(ctx context.Context, organizationID string) (Organization, error)
	PutOrganization(ctx context.Context, organization Organization) error
	DeleteOrganization(ctx context.Context, organizationID string) error
	CountOrganizationsForUser(ctx context.Context, userID string) (int, error)

	GetMembership(ctx context.Context, organizationID, userID string) (Membership, error)
	CreateMembership(ctx context.Context, membership Membership) error
	PutMembership(ctx context.Context, membership Membership) error
	DeleteMembership(ctx context.Context, organizationID, userID string) error
	ListActiveMemberships(ctx context.Context, organizationID string) ([]Membership, error)
	CountActiveMemberships(ctx context.Context, organizationID, excludeUserID string) (int, error)

	GetInvitation(ctx context.Context, invitationID string) (Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
	FindActiveInvitation(ctx context.Context, organizationID, email string, now time.Time) (Invitation, error)
	CreateInvitationSuperseding(ctx context.Context, invitation Invitation, now time.Time) error
	PutInvitation(ctx context.Context, invitation Invitation) error
	AcceptInvitation(ctx context.Context, invitation Invitation, membership Membership) error

	GetTransferRequest(ctx context.Context, requestID string) (TransferRequest, error)
	GetTransferRequestByToken(ctx context.Context, token string) (TransferRequest, error)
	FindPendingTransfer(ctx context.Context, organizationID string, now time.Time) (TransferRequest, error)
	CreateTransferRequestSuperseding(ctx context.Context, request TransferRequest, now time.Time) error
	PutTransferRequest(ctx context.Context, request TransferRequest) error
	ApplyTransferAcceptance(ctx context.Context, acceptance TransferAcceptance) error
}

// Service orchestrates organization, membership, invitation, and ownership
// transfer lifecycle behavior.
type Service struct {
	store    Store
	users    UserDirectory
	notifier Notifier
	clock    func() time.Time
	newID    func() (string, error)
	newToken func(length int) (string, error)
}

// NewService constructs organization domain use-cases. Nil clock, id, and
// token generators fall back to the platform implementations; a nil
// notifier discards events.
func NewService(store Store, users UserDirectory, notifier Notifier, clock func() time.Time, newID func() (string, error), newToken func(length int) (string, error)) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	if newToken == nil {
		newToken = token.New
	}
	return &Service{
		store:    store,
		users:    users,
		notifier: notifier,
		clock:    clock,
		newID:    newID,
		newToken: newToken,
	}
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// emit hands an event to the notifier. Notification is fire-and-forget and
// never affects the state transition that produced it.
func (s *Service) emit(ctx context.Context, event Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmailAddress(email string) bool {
	parsed, err := mail.ParseAddress(email)
	return err == nil && parsed.Address == email
}
