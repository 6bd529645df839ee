// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Organization errors
	CodeOrganizationNameEmpty     Code = "ORGANIZATION_NAME_EMPTY"
	CodeOrganizationOwnerRequired Code = "ORGANIZATION_OWNER_REQUIRED"
	CodeOrganizationNameTaken     Code = "ORGANIZATION_NAME_TAKEN"

	// Membership errors
	CodeMembershipAlreadyExists Code = "MEMBERSHIP_ALREADY_EXISTS"
	CodeMembershipNotFound      Code = "MEMBERSHIP_NOT_FOUND"
	CodeMembershipInvalidRole   Code = "MEMBERSHIP_INVALID_ROLE"

	// Invitation errors
	CodeInvitationInvalidEmail     Code = "INVITATION_INVALID_EMAIL"
	CodeInvitationAlreadyMember    Code = "INVITATION_ALREADY_MEMBER"
	CodeInvitationActiveExists     Code = "INVITATION_ACTIVE_EXISTS"
	CodeInvitationAlreadyAccepted  Code = "INVITATION_ALREADY_ACCEPTED"
	CodeInvitationAlreadyDeclined  Code = "INVITATION_ALREADY_DECLINED"
	CodeInvitationExpired          Code = "INVITATION_EXPIRED"
	CodeInvitationEmailMismatch    Code = "INVITATION_EMAIL_MISMATCH"
	CodeInvitationTokenNotFound    Code = "INVITATION_TOKEN_NOT_FOUND"
	CodeInvitationRoleNotGrantable Code = "INVITATION_ROLE_NOT_GRANTABLE"

	// Ownership transfer errors
	CodeTransferNotOwner         Code = "TRANSFER_NOT_OWNER"
	CodeTransferToSelf           Code = "TRANSFER_TO_SELF"
	CodeTransferPendingExists    Code = "TRANSFER_PENDING_EXISTS"
	CodeTransferNotRecipient     Code = "TRANSFER_NOT_RECIPIENT"
	CodeTransferExpired          Code = "TRANSFER_EXPIRED"
	CodeTransferAlreadyAccepted  Code = "TRANSFER_ALREADY_ACCEPTED"
	CodeTransferAlreadyDeclined  Code = "TRANSFER_ALREADY_DECLINED"
	CodeTransferAlreadyCancelled Code = "TRANSFER_ALREADY_CANCELLED"
	CodeTransferTokenNotFound    Code = "TRANSFER_TOKEN_NOT_FOUND"

	// Deletion guard errors
	CodeDeleteNotOwner        Code = "DELETE_NOT_OWNER"
	CodeDeleteOnlyOrg         Code = "DELETE_ONLY_ORGANIZATION"
	CodeDeleteCurrentOrg      Code = "DELETE_CURRENT_ORGANIZATION"
	CodeDeleteHasActiveMember Code = "DELETE_HAS_ACTIVE_MEMBERS"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeOrganizationNameEmpty,
		CodeOrganizationOwnerRequired,
		CodeMembershipInvalidRole,
		CodeInvitationInvalidEmail,
		CodeInvitationEmailMismatch,
		CodeInvitationRoleNotGrantable,
		CodeTransferToSelf:
		return codes.InvalidArgument

	// PermissionDenied - actor lacks the required role or identity
	case CodeTransferNotOwner,
		CodeTransferNotRecipient,
		CodeDeleteNotOwner:
		return codes.PermissionDenied

	// AlreadyExists - uniqueness and duplicate invariants
	case CodeOrganizationNameTaken,
		CodeMembershipAlreadyExists,
		CodeInvitationAlreadyMember,
		CodeInvitationActiveExists,
		CodeTransferPendingExists,
		CodeConflict:
		return codes.AlreadyExists

	// FailedPrecondition - state doesn't allow operation
	case CodeInvitationAlreadyAccepted,
		CodeInvitationAlreadyDeclined,
		CodeInvitationExpired,
		CodeTransferAlreadyAccepted,
		CodeTransferAlreadyDeclined,
		CodeTransferAlreadyCancelled,
		CodeTransferExpired,
		CodeDeleteOnlyOrg,
		CodeDeleteCurrentOrg,
		CodeDeleteHasActiveMember:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeMembershipNotFound,
		CodeInvitationTokenNotFound,
		CodeTransferTokenNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
