package auth

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		perm  string
		want  bool
	}{
		{name: "user reads posts", roles: []string{"user"}, perm: PermPostRead, want: true},
		{name: "user cannot create posts", roles: []string{"user"}, perm: PermPostCreate, want: false},
		{name: "admin deletes users", roles: []string{"admin"}, perm: PermUserDelete, want: true},
		{name: "unknown role", roles: []string{"editor"}, perm: PermPostRead, want: false},
		{name: "no roles", roles: nil, perm: PermPostRead, want: false},
		{name: "union across roles", roles: []string{"user", "admin"}, perm: PermAdminUpdate, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.roles, tt.perm); got != tt.want {
				t.Fatalf("HasPermission(%v, %q) = %v, want %v", tt.roles, tt.perm, got, tt.want)
			}
		})
	}
}

func TestPermissionsForDeduplicatesAndSorts(t *testing.T) {
	got := PermissionsFor([]string{"user", "user"})
	want := []string{PermCategoryRead, PermPostRead}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if len(PermissionsFor([]string{"admin", "user"})) != 13 {
		t.Fatalf("expected 13 admin permissions, got %v", PermissionsFor([]string{"admin"}))
	}
}

func TestRoleDefinitionsReturnsCopy(t *testing.T) {
	defs := RoleDefinitions()
	defs[0].Permissions[0] = "tampered"
	if RoleDefinitions()[0].Permissions[0] == "tampered" {
		t.Fatal("role table must be immutable")
	}
}
