package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(ids) {
			return "", fmt.Errorf("id generator exhausted after %d ids", len(ids))
		}
		id := ids[index]
		index++
		return id, nil
	}
}

func sequentialTokenGenerator(tokens ...string) func(int) (string, error) {
	index := 0
	return func(length int) (string, error) {
		if index >= len(tokens) {
			return "", fmt.Errorf("token generator exhausted after %d tokens", len(tokens))
		}
		token := tokens[index]
		index++
		return token, nil
	}
}

func membershipKey(organizationID, userID string) string {
	return organizationID + "/" + userID
}

// fakeStore is an in-memory Store mirroring the sqlite store's documented
// semantics, including the active-key uniqueness checks.
type fakeStore struct {
	mu          sync.Mutex
	orgs        map[string]Organization
	memberships map[string]Membership
	invitations map[string]Invitation
	transfers   map[string]TransferRequest
	failWith    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orgs:        make(map[string]Organization),
		memberships: make(map[string]Membership),
		invitations: make(map[string]Invitation),
		transfers:   make(map[string]TransferRequest),
	}
}

func (f *fakeStore) GetOrganization(_ context.Context, organizationID string) (Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Organization{}, f.failWith
	}
	org, ok := f.orgs[organizationID]
	if !ok || org.DeletedAt != nil {
		return Organization{}, ErrNotFound
	}
	return org, nil
}

func (f *fakeStore) PutOrganization(_ context.Context, organization Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for id, other := range f.orgs {
		if id != organization.ID && other.DeletedAt == nil && strings.EqualFold(other.Name, organization.Name) {
			return ErrConflict
		}
	}
	f.orgs[organization.ID] = organization
	return nil
}

func (f *fakeStore) DeleteOrganization(_ context.Context, organizationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.orgs, organizationID)
	for key, membership := range f.memberships {
		if membership.OrganizationID == organizationID {
			delete(f.memberships, key)
		}
	}
	for id, invitation := range f.invitations {
		if invitation.OrganizationID == organizationID {
			delete(f.invitations, id)
		}
	}
	for id, transfer := range f.transfers {
		if transfer.OrganizationID == organizationID {
			delete(f.transfers, id)
		}
	}
	return nil
}

func (f *fakeStore) CountOrganizationsForUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	seen := make(map[string]bool)
	for id, org := range f.orgs {
		if org.DeletedAt == nil && org.OwnerUserID == userID {
			seen[id] = true
		}
	}
	for _, membership := range f.memberships {
		if membership.UserID != userID || !membership.Active {
			continue
		}
		if org, ok := f.orgs[membership.OrganizationID]; ok && org.DeletedAt == nil {
			seen[membership.OrganizationID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeStore) GetMembership(_ context.Context, organizationID, userID string) (Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Membership{}, f.failWith
	}
	membership, ok := f.memberships[membershipKey(organizationID, userID)]
	if !ok {
		return Membership{}, ErrNotFound
	}
	return membership, nil
}

func (f *fakeStore) CreateMembership(_ context.Context, membership Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	key := membershipKey(membership.OrganizationID, membership.UserID)
	if _, ok := f.memberships[key]; ok {
		return ErrConflict
	}
	f.memberships[key] = membership
	return nil
}

func (f *fakeStore) PutMembership(_ context.Context, membership Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.memberships[membershipKey(membership.OrganizationID, membership.UserID)] = membership
	return nil
}

func (f *fakeStore) DeleteMembership(_ context.Context, organizationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.memberships, membershipKey(organizationID, userID))
	return nil
}

func (f *fakeStore) ListActiveMemberships(_ context.Context, organizationID string) ([]Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var members []Membership
	for _, membership := range f.memberships {
		if membership.OrganizationID == organizationID && membership.Active {
			members = append(members, membership)
		}
	}
	return members, nil
}

func (f *fakeStore) CountActiveMemberships(_ context.Context, organizationID, excludeUserID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	count := 0
	for _, membership := range f.memberships {
		if membership.OrganizationID == organizationID && membership.Active && membership.UserID != excludeUserID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetInvitation(_ context.Context, invitationID string) (Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Invitation{}, f.failWith
	}
	invitation, ok := f.invitations[invitationID]
	if !ok || invitation.DeletedAt != nil {
		return Invitation{}, ErrNotFound
	}
	return invitation, nil
}

func (f *fakeStore) GetInvitationByToken(_ context.Context, token string) (Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Invitation{}, f.failWith
	}
	for _, invitation := range f.invitations {
		if invitation.Token == token && invitation.DeletedAt == nil {
			return invitation, nil
		}
	}
	return Invitation{}, ErrNotFound
}

func (f *fakeStore) FindActiveInvitation(_ context.Context, organizationID, email string, now time.Time) (Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Invitation{}, f.failWith
	}
	for _, invitation := range f.invitations {
		if invitation.OrganizationID == organizationID && invitation.Email == email &&
			invitation.DeletedAt == nil && invitation.IsActionable(now) {
			return invitation, nil
		}
	}
	return Invitation{}, ErrNotFound
}

func (f *fakeStore) CreateInvitationSuperseding(_ context.Context, invitation Invitation, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for id, existing := range f.invitations {
		if existing.OrganizationID != invitation.OrganizationID || existing.Email != invitation.Email || existing.DeletedAt != nil {
			continue
		}
		if existing.IsPending() && existing.IsExpired(now) {
			deletedAt := now
			existing.DeletedAt = &deletedAt
			f.invitations[id] = existing
			continue
		}
		if existing.IsActionable(now) {
			return ErrConflict
		}
	}
	f.invitations[invitation.ID] = invitation
	return nil
}

func (f *fakeStore) PutInvitation(_ context.Context, invitation Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.invitations[invitation.ID] = invitation
	return nil
}

func (f *fakeStore) AcceptInvitation(_ context.Context, invitation Invitation, membership Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.invitations[invitation.ID] = invitation
	f.memberships[membershipKey(membership.OrganizationID, membership.UserID)] = membership
	return nil
}

func (f *fakeStore) GetTransferRequest(_ context.Context, requestID string) (TransferRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return TransferRequest{}, f.failWith
	}
	request, ok := f.transfers[requestID]
	if !ok || request.DeletedAt != nil {
		return TransferRequest{}, ErrNotFound
	}
	return request, nil
}

func (f *fakeStore) GetTransferRequestByToken(_ context.Context, token string) (TransferRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return TransferRequest{}, f.failWith
	}
	for _, request := range f.transfers {
		if request.Token == token && request.DeletedAt == nil {
			return request, nil
		}
	}
	return TransferRequest{}, ErrNotFound
}

func (f *fakeStore) FindPendingTransfer(_ context.Context, organizationID string, now time.Time) (TransferRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return TransferRequest{}, f.failWith
	}
	for _, request := range f.transfers {
		if request.OrganizationID == organizationID && request.DeletedAt == nil && request.IsValid(now) {
			return request, nil
		}
	}
	return TransferRequest{}, ErrNotFound
}

func (f *fakeStore) CreateTransferRequestSuperseding(_ context.Context, request TransferRequest, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for id, existing := range f.transfers {
		if existing.OrganizationID != request.OrganizationID || existing.DeletedAt != nil {
			continue
		}
		if existing.IsPending() && existing.IsExpired(now) {
			deletedAt := now
			existing.DeletedAt = &deletedAt
			f.transfers[id] = existing
			continue
		}
		if existing.IsValid(now) {
			return ErrConflict
		}
	}
	f.transfers[request.ID] = request
	return nil
}

func (f *fakeStore) PutTransferRequest(_ context.Context, request TransferRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.transfers[request.ID] = request
	return nil
}

func (f *fakeStore) ApplyTransferAcceptance(_ context.Context, acceptance TransferAcceptance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.transfers[acceptance.Request.ID] = acceptance.Request
	f.orgs[acceptance.Organization.ID] = acceptance.Organization
	f.memberships[membershipKey(acceptance.Demoted.OrganizationID, acceptance.Demoted.UserID)] = acceptance.Demoted
	if acceptance.Promoted != nil {
		f.memberships[membershipKey(acceptance.Promoted.OrganizationID, acceptance.Promoted.UserID)] = *acceptance.Promoted
	}
	return nil
}

var _ Store = (*fakeStore)(nil)

// fakeDirectory is an in-memory UserDirectory.
type fakeDirectory struct {
	users map[string]User
}

func newFakeDirectory(users ...User) *fakeDirectory {
	directory := &fakeDirectory{users: make(map[string]User)}
	for _, user := range users {
		directory.users[user.ID] = user
	}
	return directory
}

func (f *fakeDirectory) GetUser(_ context.Context, userID string) (User, error) {
	user, ok := f.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (f *fakeDirectory) FindUserByEmail(_ context.Context, email string) (User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

var _ UserDirectory = (*fakeDirectory)(nil)

// captureNotifier records events for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureNotifier) Notify(_ context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureNotifier) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.events))
	for i, event := range c.events {
		names[i] = event.Name
	}
	return names
}
