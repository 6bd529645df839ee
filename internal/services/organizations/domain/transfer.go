package domain

import "time"

const (
	// DefaultTransferTTL is how long transfer requests stay acceptable by default.
	DefaultTransferTTL = 72 * time.Hour
	// TransferTokenLength is the length of transfer request tokens in characters.
	TransferTokenLength = 64
)

// TransferRequest asks a user to take over ownership of an organization.
//
// State derivation follows the invitation pattern with a third terminal
// timestamp for cancellation. Exactly one of the terminal timestamps may be
// set; a request is never re-opened.
type TransferRequest struct {
	ID                 string
	OrganizationID     string
	CurrentOwnerUserID string
	NewOwnerUserID     string
	Token              string
	Message            string
	ExpiresAt          time.Time
	AcceptedAt         *time.Time
	DeclinedAt         *time.Time
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// IsPending reports whether no terminal timestamp has been set.
func (r TransferRequest) IsPending() bool {
	return r.AcceptedAt == nil && r.DeclinedAt == nil && r.CancelledAt == nil
}

// IsAccepted reports whether the request has been accepted.
func (r TransferRequest) IsAccepted() bool {
	return r.AcceptedAt != nil
}

// IsDeclined reports whether the request has been declined.
func (r TransferRequest) IsDeclined() bool {
	return r.DeclinedAt != nil
}

// IsCancelled reports whether the request has been cancelled.
func (r TransferRequest) IsCancelled() bool {
	return r.CancelledAt != nil
}

// IsExpired reports whether the request's expiry has passed at now.
func (r TransferRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsValid reports whether the request can still be accepted or declined:
// pending and not expired. Cancellation only requires pending.
func (r TransferRequest) IsValid(now time.Time) bool {
	return r.IsPending() && !r.IsExpired(now)
}
