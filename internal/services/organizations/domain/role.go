package domain

import "strings"

// Role represents a user's role within an organization.
//
// Roles are ordered: member < administrator < owner. The owner role is
// primarily carried by Organization.OwnerUserID; a membership row holds it
// only for historical record after an ownership transfer.
type Role int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleMember is a regular member with basic access to organization resources.
	RoleMember
	// RoleAdministrator has full management access to the organization.
	RoleAdministrator
	// RoleOwner has full control and ownership of the organization.
	RoleOwner
)

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdministrator || r == RoleOwner
}

// IsOwner reports whether the role is the owner role.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}

// IsMember reports whether the role is the plain member role.
func (r Role) IsMember() bool {
	return r == RoleMember
}

// Valid reports whether the role is one of the defined role values.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleAdministrator, RoleOwner:
		return true
	default:
		return false
	}
}

// Label returns the string label for a role.
func (r Role) Label() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleAdministrator:
		return "administrator"
	case RoleOwner:
		return "owner"
	default:
		return "unspecified"
	}
}

// Description returns a human-readable description of the role.
func (r Role) Description() string {
	switch r {
	case RoleMember:
		return "Regular member with basic access to organization resources."
	case RoleAdministrator:
		return "Administrator with full management access to the organization."
	case RoleOwner:
		return "Owner with full control and ownership of the organization."
	default:
		return "Unspecified role."
	}
}

// RoleFromLabel converts a role label to a Role value.
func RoleFromLabel(label string) Role {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "member":
		return RoleMember
	case "administrator":
		return RoleAdministrator
	case "owner":
		return RoleOwner
	default:
		return RoleUnspecified
	}
}
