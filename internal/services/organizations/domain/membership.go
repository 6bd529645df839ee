package domain

import "time"

// Membership associates a user with an organization.
//
// A user holds at most one membership row per organization. Role changes go
// through the membership service, never direct writes.
type Membership struct {
	OrganizationID string
	UserID         string
	Role           Role
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewMembership builds a membership row with timestamps.
func NewMembership(organizationID, userID string, role Role, active bool, now time.Time) Membership {
	at := now.UTC()
	return Membership{
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
		Active:         active,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}
