// Package render builds the email copy for organization workflow events.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
)

var supported = []language.Tag{
	language.AmericanEnglish, // en-US is the base locale
}

var matcher = language.NewMatcher(supported)

// Email is a rendered message ready for a mailer.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Renderer turns workflow events into email copy. Action links are built
// from the configured public base URL plus the event's opaque token.
type Renderer struct {
	baseURL string
}

// NewRenderer builds a renderer rooted at the given public base URL.
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (r *Renderer) invitationURL(token, action string) string {
	return fmt.Sprintf("%s/invitations/%s/%s", r.baseURL, token, action)
}

func (r *Renderer) transferURL(token, action string) string {
	return fmt.Sprintf("%s/transfers/%s/%s", r.baseURL, token, action)
}

func printerFor(locale string) *message.Printer {
	tag, _ := language.MatchStrings(matcher, locale)
	return message.NewPrinter(tag)
}

// Render builds the email for one event in the closest supported locale.
// Events with no recipient address produce a zero Email and false.
func (r *Renderer) Render(event domain.Event, locale string) (Email, bool) {
	if event.RecipientEmail == "" {
		return Email{}, false
	}
	p := printerFor(locale)

	switch event.Name {
	case domain.EventInvitationSent:
		if event.Invitation == nil {
			return Email{}, false
		}
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("You have been invited to join %s", event.OrganizationName),
			Body: p.Sprintf(
				"You have been invited to join %s as %s.\n\n"+
					"Accept the invitation: %s\n"+
					"Decline the invitation: %s\n\n"+
					"This invitation expires on %s.",
				event.OrganizationName,
				event.Invitation.Role.Label(),
				r.invitationURL(event.Invitation.Token, "accept"),
				r.invitationURL(event.Invitation.Token, "decline"),
				event.Invitation.ExpiresAt.Format("Jan 2, 2006"),
			),
		}, true
	case domain.EventInvitationAccepted:
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("Welcome to %s", event.OrganizationName),
			Body:    p.Sprintf("Your invitation to %s has been accepted. You are now a member.", event.OrganizationName),
		}, true
	case domain.EventInvitationDeclined:
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("Invitation to %s declined", event.OrganizationName),
			Body:    p.Sprintf("The invitation to join %s has been declined.", event.OrganizationName),
		}, true
	case domain.EventTransferRequested:
		if event.Transfer == nil {
			return Email{}, false
		}
		body := p.Sprintf(
			"You have been asked to take over ownership of %s.\n\n"+
				"Accept the transfer: %s\n"+
				"Decline the transfer: %s\n\n"+
				"This request expires on %s.",
			event.OrganizationName,
			r.transferURL(event.Transfer.Token, "accept"),
			r.transferURL(event.Transfer.Token, "decline"),
			event.Transfer.ExpiresAt.Format("Jan 2, 2006 15:04 MST"),
		)
		if event.Transfer.Message != "" {
			body += p.Sprintf("\n\nMessage from the current owner:\n%s", event.Transfer.Message)
		}
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("Ownership transfer request for %s", event.OrganizationName),
			Body:    body,
		}, true
	case domain.EventTransferAccepted:
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("Ownership of %s has been transferred", event.OrganizationName),
			Body:    p.Sprintf("The ownership transfer of %s is complete. You are now an administrator of the organization.", event.OrganizationName),
		}, true
	case domain.EventTransferDeclined:
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("Ownership transfer for %s declined", event.OrganizationName),
			Body:    p.Sprintf("Your ownership transfer request for %s has been declined. You remain the owner.", event.OrganizationName),
		}, true
	case domain.EventTransferCancelled:
		return Email{
			To:      event.RecipientEmail,
			Subject: p.Sprintf("Ownership transfer for %s cancelled", event.OrganizationName),
			Body:    p.Sprintf("The ownership transfer request for %s has been cancelled by the owner.", event.OrganizationName),
		}, true
	default:
		return Email{}, false
	}
}
