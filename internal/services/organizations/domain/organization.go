package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/orgspace/internal/errors"
	"github.com/louisbranch/orgspace/internal/platform/id"
)

var (
	// ErrOrganizationNameEmpty indicates a missing organization name.
	ErrOrganizationNameEmpty = apperrors.New(apperrors.CodeOrganizationNameEmpty, "Organization name cannot be empty")
	// ErrOrganizationOwnerRequired indicates a missing owner reference.
	ErrOrganizationOwnerRequired = apperrors.New(apperrors.CodeOrganizationOwnerRequired, "Organization owner is required")
	// ErrOrganizationNameTaken indicates the name collides with a live organization.
	ErrOrganizationNameTaken = apperrors.New(apperrors.CodeOrganizationNameTaken, "An organization with this name already exists")
)

// Organization is a tenant boundary owning resources and memberships.
//
// Exactly one owner exists at all times; ownership changes only through the
// transfer workflow. DeletedAt marks a soft delete, except for the deletion
// guard's Delete which removes the row outright.
type Organization struct {
	ID          string
	Name        string
	Description string
	OwnerUserID string
	Settings    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// IsOwnedBy reports whether the given user owns the organization.
func (o Organization) IsOwnedBy(userID string) bool {
	return o.OwnerUserID != "" && o.OwnerUserID == userID
}

// IsActive reports whether the organization has not been soft-deleted.
func (o Organization) IsActive() bool {
	return o.DeletedAt == nil
}

// Setting returns the value for a dot-path settings key.
func (o Organization) Setting(key string) (string, bool) {
	value, ok := o.Settings[key]
	return value, ok
}

// SetSetting stores a dot-path settings key on the organization.
func (o *Organization) SetSetting(key, value string) {
	if o.Settings == nil {
		o.Settings = make(map[string]string)
	}
	o.Settings[key] = value
}

// DefaultSettings returns the settings applied to new organizations.
func DefaultSettings() map[string]string {
	return map[string]string{
		"notifications.email": "true",
		"visibility":          "private",
	}
}

// CreateOrganizationInput describes the metadata needed to create an organization.
type CreateOrganizationInput struct {
	Name        string
	Description string
	OwnerUserID string
	Settings    map[string]string
}

// CreateOrganization creates a new organization with a generated ID,
// timestamps, and default settings layered under any provided settings.
func CreateOrganization(input CreateOrganizationInput, now func() time.Time, idGenerator func() (string, error)) (Organization, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateOrganizationInput(input)
	if err != nil {
		return Organization{}, err
	}

	orgID, err := idGenerator()
	if err != nil {
		return Organization{}, fmt.Errorf("generate organization id: %w", err)
	}

	settings := DefaultSettings()
	for key, value := range normalized.Settings {
		settings[key] = value
	}

	createdAt := now().UTC()
	return Organization{
		ID:          orgID,
		Name:        normalized.Name,
		Description: normalized.Description,
		OwnerUserID: normalized.OwnerUserID,
		Settings:    settings,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NormalizeCreateOrganizationInput trims and validates organization input metadata.
func NormalizeCreateOrganizationInput(input CreateOrganizationInput) (CreateOrganizationInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateOrganizationInput{}, ErrOrganizationNameEmpty
	}
	input.Description = strings.TrimSpace(input.Description)
	input.OwnerUserID = strings.TrimSpace(input.OwnerUserID)
	if input.OwnerUserID == "" {
		return CreateOrganizationInput{}, ErrOrganizationOwnerRequired
	}
	return input, nil
}
