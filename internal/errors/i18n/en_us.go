package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeOrganizationNameEmpty      = "ORGANIZATION_NAME_EMPTY"
	CodeOrganizationOwnerRequired  = "ORGANIZATION_OWNER_REQUIRED"
	CodeOrganizationNameTaken      = "ORGANIZATION_NAME_TAKEN"
	CodeMembershipAlreadyExists    = "MEMBERSHIP_ALREADY_EXISTS"
	CodeMembershipNotFound         = "MEMBERSHIP_NOT_FOUND"
	CodeMembershipInvalidRole      = "MEMBERSHIP_INVALID_ROLE"
	CodeInvitationInvalidEmail     = "INVITATION_INVALID_EMAIL"
	CodeInvitationAlreadyMember    = "INVITATION_ALREADY_MEMBER"
	CodeInvitationActiveExists     = "INVITATION_ACTIVE_EXISTS"
	CodeInvitationAlreadyAccepted  = "INVITATION_ALREADY_ACCEPTED"
	CodeInvitationAlreadyDeclined  = "INVITATION_ALREADY_DECLINED"
	CodeInvitationExpired          = "INVITATION_EXPIRED"
	CodeInvitationEmailMismatch    = "INVITATION_EMAIL_MISMATCH"
	CodeInvitationTokenNotFound    = "INVITATION_TOKEN_NOT_FOUND"
	CodeInvitationRoleNotGrantable = "INVITATION_ROLE_NOT_GRANTABLE"
	CodeTransferNotOwner           = "TRANSFER_NOT_OWNER"
	CodeTransferToSelf             = "TRANSFER_TO_SELF"
	CodeTransferPendingExists      = "TRANSFER_PENDING_EXISTS"
	CodeTransferNotRecipient       = "TRANSFER_NOT_RECIPIENT"
	CodeTransferExpired            = "TRANSFER_EXPIRED"
	CodeTransferAlreadyAccepted    = "TRANSFER_ALREADY_ACCEPTED"
	CodeTransferAlreadyDeclined    = "TRANSFER_ALREADY_DECLINED"
	CodeTransferAlreadyCancelled   = "TRANSFER_ALREADY_CANCELLED"
	CodeTransferTokenNotFound      = "TRANSFER_TOKEN_NOT_FOUND"
	CodeDeleteNotOwner             = "DELETE_NOT_OWNER"
	CodeDeleteOnlyOrg              = "DELETE_ONLY_ORGANIZATION"
	CodeDeleteCurrentOrg           = "DELETE_CURRENT_ORGANIZATION"
	CodeDeleteHasActiveMember      = "DELETE_HAS_ACTIVE_MEMBERS"
	CodeNotFound                   = "NOT_FOUND"
	CodeConflict                   = "CONFLICT"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Organization errors
		CodeOrganizationNameEmpty:     "Organization name cannot be empty",
		CodeOrganizationOwnerRequired: "Organization owner is required",
		CodeOrganizationNameTaken:     "An organization named {{.Name}} already exists",

		// Membership errors
		CodeMembershipAlreadyExists: "This user is already a member of the organization.",
		CodeMembershipNotFound:      "This user is not a member of the organization.",
		CodeMembershipInvalidRole:   "Invalid organization role specified",

		// Invitation errors
		CodeInvitationInvalidEmail:     "Invalid email address: {{.Email}}",
		CodeInvitationAlreadyMember:    "User with email {{.Email}} is already a member of this organization.",
		CodeInvitationActiveExists:     "An active invitation already exists for {{.Email}}.",
		CodeInvitationAlreadyAccepted:  "This invitation has already been accepted.",
		CodeInvitationAlreadyDeclined:  "This invitation has already been declined.",
		CodeInvitationExpired:          "This invitation has expired.",
		CodeInvitationEmailMismatch:    "The email address does not match the invitation.",
		CodeInvitationTokenNotFound:    "Invalid invitation token.",
		CodeInvitationRoleNotGrantable: "Invitations cannot grant the owner role.",

		// Ownership transfer errors
		CodeTransferNotOwner:         "Only the current owner can initiate an ownership transfer.",
		CodeTransferToSelf:           "Cannot transfer ownership to yourself.",
		CodeTransferPendingExists:    "There is already a pending transfer request for this organization. Please cancel it first.",
		CodeTransferNotRecipient:     "Only the intended new owner can respond to this transfer request.",
		CodeTransferExpired:          "This transfer request has expired.",
		CodeTransferAlreadyAccepted:  "This transfer request has already been accepted.",
		CodeTransferAlreadyDeclined:  "This transfer request has already been declined.",
		CodeTransferAlreadyCancelled: "This transfer request has been cancelled.",
		CodeTransferTokenNotFound:    "Invalid transfer request token.",

		// Deletion guard errors
		CodeDeleteNotOwner:        "Only the organization owner can delete the organization.",
		CodeDeleteOnlyOrg:         "Cannot delete your only organization. You must have at least one organization.",
		CodeDeleteCurrentOrg:      "Cannot delete your current organization. Please switch to another organization first.",
		CodeDeleteHasActiveMember: "Cannot delete organization with active members. Remove all members first.",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
		CodeConflict: "A conflicting record already exists",
	},
}
