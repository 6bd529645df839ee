package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/orgspace/internal/services/organizations/domain"
)

func TestServerStartAndShutdown(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORGSPACE_ORGANIZATIONS_DB_PATH", filepath.Join(dir, "organizations.db"))
	t.Setenv("ORGSPACE_AUTH_DB_PATH", filepath.Join(dir, "auth.db"))
	t.Setenv("ORGSPACE_OTEL_ENDPOINT", "")

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if server.Addr() == "" {
		t.Fatal("expected a bound address")
	}
	if server.Service() == nil {
		t.Fatal("expected a wired domain service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerCreatesOrganizationEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORGSPACE_ORGANIZATIONS_DB_PATH", filepath.Join(dir, "organizations.db"))
	t.Setenv("ORGSPACE_AUTH_DB_PATH", filepath.Join(dir, "auth.db"))

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer server.Close()

	service := server.Service()
	org, err := service.CreateOrganization(context.Background(), domain.CreateOrganizationInput{
		Name:        "Acme",
		OwnerUserID: "owner-1",
	})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	got, err := service.GetOrganization(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("get organization: %v", err)
	}
	if got.Name != "Acme" {
		t.Errorf("unexpected organization %+v", got)
	}
}
