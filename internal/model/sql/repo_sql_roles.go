package sql

import (
	"blog/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// GetRoleByName loads a role by its unique name.
func (r *GormRepository) GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var role entity.DbRole
	if err := r.conn(ctx).Where("name = ?", trimmed).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles returns all roles ordered by name.
func (r *GormRepository) ListRoles(ctx context.Context) ([]entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var roles []entity.DbRole
	if err := r.conn(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole inserts a new role.
func (r *GormRepository) CreateRole(ctx context.Context, role *entity.DbRole) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if role == nil {
		return fmt.Errorf("role is nil")
	}
	return translateError(r.conn(ctx).Create(role).Error)
}

// UpdateRole rewrites description and permissions of a role.
func (r *GormRepository) UpdateRole(ctx context.Context, id uint, description string, permissions entity.StringArray) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid role id")
	}
	return r.conn(ctx).Model(&entity.DbRole{}).Where("id = ?", id).Updates(map[string]interface{}{
		"description": description,
		"permissions": permissions,
	}).Error
}
