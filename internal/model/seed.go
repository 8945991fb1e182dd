package model

import (
	"blog/internal/auth"
	"blog/internal/entity"
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// SeedDefaultRoles ensures the static roles exist with their current permission list.
func SeedDefaultRoles(ctx context.Context, repo Repository) error {
	if repo == nil {
		return nil
	}

	for _, def := range auth.RoleDefinitions() {
		existing, err := repo.GetRoleByName(ctx, def.Name)
		switch {
		case err == nil:
			if err := syncExistingRole(ctx, repo, existing, def); err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			role := entity.DbRole{
				Name:        def.Name,
				Description: def.Description,
				Permissions: entity.StringArray(def.Permissions),
			}
			if err := repo.CreateRole(ctx, &role); err != nil {
				return err
			}
			logrus.WithField("role", def.Name).Info("seeded role")
		default:
			return err
		}
	}
	return nil
}

func syncExistingRole(ctx context.Context, repo Repository, existing *entity.DbRole, def auth.RoleDefinition) error {
	if existing == nil {
		return nil
	}
	if existing.Description == def.Description && samePermissions(existing.Permissions, def.Permissions) {
		return nil
	}
	return repo.UpdateRole(ctx, existing.ID, def.Description, entity.StringArray(def.Permissions))
}

func samePermissions(current entity.StringArray, want []string) bool {
	if len(current) != len(want) {
		return false
	}
	for _, perm := range want {
		if !current.Contains(perm) {
			return false
		}
	}
	return true
}
