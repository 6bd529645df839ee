package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CreateOrganization validates and persists a new organization owned by the
// input's owner. Name uniqueness among live organizations is enforced by the
// store and surfaces as ErrOrganizationNameTaken.
func (s *Service) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (Organization, error) {
	if s.store == nil {
		return Organization{}, ErrStoreNotConfigured
	}

	organization, err := CreateOrganization(input, s.clock, s.newID)
	if err != nil {
		return Organization{}, err
	}

	if err := s.store.PutOrganization(ctx, organization); err != nil {
		if errors.Is(err, ErrConflict) {
			return Organization{}, ErrOrganizationNameTaken.WithMetadata(map[string]string{
				"Name": organization.Name,
			})
		}
		return Organization{}, fmt.Errorf("put organization: %w", err)
	}
	return organization, nil
}

// GetOrganization returns the organization with the given ID.
func (s *Service) GetOrganization(ctx context.Context, organizationID string) (Organization, error) {
	if s.store == nil {
		return Organization{}, ErrStoreNotConfigured
	}
	return s.store.GetOrganization(ctx, organizationID)
}

// UpdateOrganizationInput carries the mutable organization fields. Nil
// pointers leave the current value untouched; Settings entries are merged
// over the existing map.
type UpdateOrganizationInput struct {
	Name        *string
	Description *string
	Settings    map[string]string
}

// UpdateOrganization applies metadata changes to an organization.
func (s *Service) UpdateOrganization(ctx context.Context, organizationID string, input UpdateOrganizationInput) (Organization, error) {
	if s.store == nil {
		return Organization{}, ErrStoreNotConfigured
	}

	organization, err := s.store.GetOrganization(ctx, organizationID)
	if err != nil {
		return Organization{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Organization{}, ErrOrganizationNameEmpty
		}
		organization.Name = name
	}
	if input.Description != nil {
		organization.Description = strings.TrimSpace(*input.Description)
	}
	for key, value := range input.Settings {
		organization.SetSetting(key, value)
	}
	organization.UpdatedAt = s.nowUTC()

	if err := s.store.PutOrganization(ctx, organization); err != nil {
		if errors.Is(err, ErrConflict) {
			return Organization{}, ErrOrganizationNameTaken.WithMetadata(map[string]string{
				"Name": organization.Name,
			})
		}
		return Organization{}, fmt.Errorf("put organization: %w", err)
	}
	return organization, nil
}
