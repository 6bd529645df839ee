package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateOrganizationConstructor(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	org, err := CreateOrganization(CreateOrganizationInput{
		Name:        "  Acme  ",
		Description: " Widgets ",
		OwnerUserID: "user-1",
		Settings:    map[string]string{"visibility": "public"},
	}, fixedClock(at), sequentialIDGenerator("org-1"))
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}

	if org.ID != "org-1" {
		t.Errorf("expected generated id, got %q", org.ID)
	}
	if org.Name != "Acme" || org.Description != "Widgets" {
		t.Errorf("expected trimmed fields, got %q / %q", org.Name, org.Description)
	}
	if !org.IsOwnedBy("user-1") {
		t.Error("expected owner to be user-1")
	}
	if !org.CreatedAt.Equal(at) || !org.UpdatedAt.Equal(at) {
		t.Errorf("expected timestamps %v, got %v / %v", at, org.CreatedAt, org.UpdatedAt)
	}
	if value, _ := org.Setting("visibility"); value != "public" {
		t.Errorf("expected provided setting to win over default, got %q", value)
	}
	if value, _ := org.Setting("notifications.email"); value != "true" {
		t.Errorf("expected default setting, got %q", value)
	}
}

func TestCreateOrganizationValidation(t *testing.T) {
	t.Parallel()

	_, err := CreateOrganization(CreateOrganizationInput{Name: "   ", OwnerUserID: "user-1"}, nil, nil)
	if !errors.Is(err, ErrOrganizationNameEmpty) {
		t.Fatalf("expected name empty error, got %v", err)
	}

	_, err = CreateOrganization(CreateOrganizationInput{Name: "Acme"}, nil, nil)
	if !errors.Is(err, ErrOrganizationOwnerRequired) {
		t.Fatalf("expected owner required error, got %v", err)
	}
}

func TestServiceCreateOrganizationNameTaken(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	service := NewService(store, nil, nil, fixedClock(at), sequentialIDGenerator("org-1", "org-2"), nil)

	ctx := context.Background()
	if _, err := service.CreateOrganization(ctx, CreateOrganizationInput{Name: "Acme", OwnerUserID: "user-1"}); err != nil {
		t.Fatalf("create organization: %v", err)
	}
	_, err := service.CreateOrganization(ctx, CreateOrganizationInput{Name: "acme", OwnerUserID: "user-2"})
	if !errors.Is(err, ErrOrganizationNameTaken) {
		t.Fatalf("expected name taken error, got %v", err)
	}
}

func TestServiceUpdateOrganization(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := at.Add(time.Hour)
	store := newFakeStore()
	service := NewService(store, nil, nil, fixedClock(at), sequentialIDGenerator("org-1"), nil)

	ctx := context.Background()
	org, err := service.CreateOrganization(ctx, CreateOrganizationInput{Name: "Acme", OwnerUserID: "user-1"})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}

	service = NewService(store, nil, nil, fixedClock(later), nil, nil)
	name := "Acme Corp"
	updated, err := service.UpdateOrganization(ctx, org.ID, UpdateOrganizationInput{
		Name:     &name,
		Settings: map[string]string{"visibility": "public"},
	})
	if err != nil {
		t.Fatalf("update organization: %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if value, _ := updated.Setting("visibility"); value != "public" {
		t.Errorf("expected merged setting, got %q", value)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("expected UpdatedAt %v, got %v", later, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(at) {
		t.Errorf("expected CreatedAt unchanged, got %v", updated.CreatedAt)
	}

	empty := "  "
	if _, err := service.UpdateOrganization(ctx, org.ID, UpdateOrganizationInput{Name: &empty}); !errors.Is(err, ErrOrganizationNameEmpty) {
		t.Fatalf("expected name empty error, got %v", err)
	}
}

func TestServiceGetOrganizationNotFound(t *testing.T) {
	t.Parallel()

	service := NewService(newFakeStore(), nil, nil, nil, nil, nil)
	_, err := service.GetOrganization(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
