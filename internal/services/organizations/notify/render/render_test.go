package render

import (
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
)

func TestRenderInvitationSent(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer("https://orgspace.example/")
	invitation := &domain.Invitation{
		Token:     "invite-token",
		Role:      domain.RoleAdministrator,
		ExpiresAt: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
	}
	email, ok := renderer.Render(domain.Event{
		Name:             domain.EventInvitationSent,
		OrganizationName: "Acme",
		RecipientEmail:   "new@example.com",
		Invitation:       invitation,
	}, "en-US")
	if !ok {
		t.Fatal("expected an email")
	}

	if email.To != "new@example.com" {
		t.Errorf("unexpected recipient %q", email.To)
	}
	if !strings.Contains(email.Subject, "Acme") {
		t.Errorf("subject missing organization name: %q", email.Subject)
	}
	if !strings.Contains(email.Body, "https://orgspace.example/invitations/invite-token/accept") {
		t.Errorf("body missing accept link: %q", email.Body)
	}
	if !strings.Contains(email.Body, "https://orgspace.example/invitations/invite-token/decline") {
		t.Errorf("body missing decline link: %q", email.Body)
	}
	if !strings.Contains(email.Body, "administrator") {
		t.Errorf("body missing role: %q", email.Body)
	}
}

func TestRenderTransferRequestedIncludesMessage(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer("https://orgspace.example")
	transfer := &domain.TransferRequest{
		Token:     "transfer-token",
		Message:   "please take over",
		ExpiresAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
	}
	email, ok := renderer.Render(domain.Event{
		Name:             domain.EventTransferRequested,
		OrganizationName: "Acme",
		RecipientEmail:   "next@example.com",
		Transfer:         transfer,
	}, "en-US")
	if !ok {
		t.Fatal("expected an email")
	}
	if !strings.Contains(email.Body, "please take over") {
		t.Errorf("body missing owner message: %q", email.Body)
	}
	if !strings.Contains(email.Body, "/transfers/transfer-token/accept") {
		t.Errorf("body missing accept link: %q", email.Body)
	}
}

func TestRenderSkipsEventsWithoutRecipient(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer("https://orgspace.example")
	if _, ok := renderer.Render(domain.Event{Name: domain.EventInvitationAccepted}, "en-US"); ok {
		t.Error("expected no email without a recipient")
	}
}

func TestRenderUnknownLocaleFallsBack(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer("https://orgspace.example")
	email, ok := renderer.Render(domain.Event{
		Name:             domain.EventTransferCancelled,
		OrganizationName: "Acme",
		RecipientEmail:   "next@example.com",
	}, "xx-YY")
	if !ok {
		t.Fatal("expected an email")
	}
	if !strings.Contains(email.Body, "cancelled") {
		t.Errorf("unexpected body %q", email.Body)
	}
}
