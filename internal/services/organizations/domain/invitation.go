package domain

import "time"

const (
	// DefaultInvitationTTL is how long invitations stay acceptable by default.
	DefaultInvitationTTL = 7 * 24 * time.Hour
	// InvitationTokenLength is the length of invitation tokens in characters.
	InvitationTokenLength = 40
)

// Invitation asks an email address to join an organization with a role.
//
// Lifecycle state is derived from the nullable timestamps, never stored: a
// row with both AcceptedAt and DeclinedAt nil is pending, and stays pending
// even past ExpiresAt until a fresh send supersedes it. Expiry is a gate on
// actions, not a state transition.
type Invitation struct {
	ID               string
	OrganizationID   string
	InvitedByUserID  string
	Email            string
	AcceptedByUserID string
	Role             Role
	Token            string
	ExpiresAt        time.Time
	AcceptedAt       *time.Time
	DeclinedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// IsPending reports whether the invitation has not been accepted or declined.
func (i Invitation) IsPending() bool {
	return i.AcceptedAt == nil && i.DeclinedAt == nil
}

// IsAccepted reports whether the invitation has been accepted.
func (i Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// IsDeclined reports whether the invitation has been declined.
func (i Invitation) IsDeclined() bool {
	return i.DeclinedAt != nil
}

// IsExpired reports whether the invitation's expiry has passed at now.
func (i Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsActionable reports whether the invitation can still be accepted or
// declined: pending and not expired.
func (i Invitation) IsActionable(now time.Time) bool {
	return i.IsPending() && !i.IsExpired(now)
}
