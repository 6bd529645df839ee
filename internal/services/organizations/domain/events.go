package domain

import "context"

// Event names emitted by the workflows.
const (
	EventInvitationSent     = "organization.invitation.sent"
	EventInvitationAccepted = "organization.invitation.accepted"
	EventInvitationDeclined = "organization.invitation.declined"
	EventTransferRequested  = "organization.transfer.requested"
	EventTransferAccepted   = "organization.transfer.accepted"
	EventTransferDeclined   = "organization.transfer.declined"
	EventTransferCancelled  = "organization.transfer.cancelled"
)

// Event is a workflow state transition handed to the notifier.
//
// Exactly one of Invitation and Transfer is set, matching the event name.
// Display fields are resolved at emit time so consumers never re-query the
// store to render a message.
type Event struct {
	Name             string
	OrganizationID   string
	OrganizationName string
	ActorUserID      string
	RecipientEmail   string
	Invitation       *Invitation
	Transfer         *TransferRequest
}

// Notifier receives workflow events for out-of-band delivery.
//
// Calls are fire-and-forget: implementations must not block, and a failed
// delivery never affects the state transition that produced the event.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Event) {}
