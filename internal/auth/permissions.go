package auth

import "sort"

const (
	PermPostCreate     = "post:create"
	PermPostRead       = "post:read"
	PermPostUpdate     = "post:update"
	PermPostDelete     = "post:delete"
	PermCategoryCreate = "category:create"
	PermCategoryRead   = "category:read"
	PermCategoryUpdate = "category:update"
	PermCategoryDelete = "category:delete"
	PermUserRead       = "user:read"
	PermUserUpdate     = "user:update"
	PermUserDelete     = "user:delete"
	PermAdminRead      = "admin:read"
	PermAdminUpdate    = "admin:update"
)

// RoleDefinition describes a seeded role.
type RoleDefinition struct {
	Name        string
	Description string
	Permissions []string
}

var roleDefinitions = []RoleDefinition{
	{
		Name:        "admin",
		Description: "Administrator with full access",
		Permissions: []string{
			PermPostCreate, PermPostRead, PermPostUpdate, PermPostDelete,
			PermCategoryCreate, PermCategoryRead, PermCategoryUpdate, PermCategoryDelete,
			PermUserRead, PermUserUpdate, PermUserDelete,
			PermAdminRead, PermAdminUpdate,
		},
	},
	{
		Name:        "user",
		Description: "Regular user with read access",
		Permissions: []string{PermPostRead, PermCategoryRead},
	},
}

var rolePermissions = func() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(roleDefinitions))
	for _, def := range roleDefinitions {
		set := make(map[string]struct{}, len(def.Permissions))
		for _, perm := range def.Permissions {
			set[perm] = struct{}{}
		}
		out[def.Name] = set
	}
	return out
}()

// RoleDefinitions returns a copy of the static role table.
func RoleDefinitions() []RoleDefinition {
	out := make([]RoleDefinition, len(roleDefinitions))
	for i, def := range roleDefinitions {
		perms := make([]string, len(def.Permissions))
		copy(perms, def.Permissions)
		out[i] = RoleDefinition{Name: def.Name, Description: def.Description, Permissions: perms}
	}
	return out
}

// PermissionsFor returns the sorted union of permissions granted by roles.
// Unknown role names grant nothing.
func PermissionsFor(roles []string) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		for perm := range rolePermissions[role] {
			seen[perm] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for perm := range seen {
		out = append(out, perm)
	}
	sort.Strings(out)
	return out
}

// HasPermission reports whether any of roles grants perm.
func HasPermission(roles []string, perm string) bool {
	for _, role := range roles {
		if _, ok := rolePermissions[role][perm]; ok {
			return true
		}
	}
	return false
}
