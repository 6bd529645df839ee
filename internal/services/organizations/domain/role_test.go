package domain

import "testing"

func TestRolePredicates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role    Role
		isAdmin bool
		isOwner bool
		member  bool
	}{
		{RoleUnspecified, false, false, false},
		{RoleMember, false, false, true},
		{RoleAdministrator, true, false, false},
		{RoleOwner, true, true, false},
	}
	for _, tc := range cases {
		if got := tc.role.IsAdmin(); got != tc.isAdmin {
			t.Errorf("%s IsAdmin = %v, want %v", tc.role.Label(), got, tc.isAdmin)
		}
		if got := tc.role.IsOwner(); got != tc.isOwner {
			t.Errorf("%s IsOwner = %v, want %v", tc.role.Label(), got, tc.isOwner)
		}
		if got := tc.role.IsMember(); got != tc.member {
			t.Errorf("%s IsMember = %v, want %v", tc.role.Label(), got, tc.member)
		}
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	if RoleUnspecified.Valid() {
		t.Error("unspecified role should not be valid")
	}
	if Role(42).Valid() {
		t.Error("out of range role should not be valid")
	}
	for _, role := range []Role{RoleMember, RoleAdministrator, RoleOwner} {
		if !role.Valid() {
			t.Errorf("%s should be valid", role.Label())
		}
	}
}

func TestRoleLabelRoundTrip(t *testing.T) {
	t.Parallel()

	for _, role := range []Role{RoleMember, RoleAdministrator, RoleOwner} {
		if got := RoleFromLabel(role.Label()); got != role {
			t.Errorf("RoleFromLabel(%q) = %v, want %v", role.Label(), got, role)
		}
	}
	if got := RoleFromLabel("  Administrator "); got != RoleAdministrator {
		t.Errorf("expected label parsing to trim and lowercase, got %v", got)
	}
	if got := RoleFromLabel("chief"); got != RoleUnspecified {
		t.Errorf("unknown label should map to unspecified, got %v", got)
	}
}
