package sql

import (
	"blog/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderRolesByName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return translateError(r.conn(ctx).Omit("Roles").Create(user).Error)
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user")
	}
	if updates.IsEmpty() {
		return nil
	}
	return translateError(r.conn(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Updates(updates.ToMap()).Error)
}

// GetUserByEmail loads a user by email.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var user entity.DbUser
	if err := r.conn(ctx).Where("email = ?", trimmed).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether an account already uses email.
func (r *GormRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errNotInitialised
	}
	var count int64
	if err := r.conn(ctx).Model(&entity.DbUser{}).Where("email = ?", strings.TrimSpace(email)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user entity.DbUser
	if err := r.conn(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserWithRoles loads a user together with its roles.
func (r *GormRepository) GetUserWithRoles(ctx context.Context, id uint) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user entity.DbUser
	if err := r.conn(ctx).Preload("Roles", orderRolesByName).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

var userSortColumns = map[string]string{
	"id":         "id",
	"email":      "email",
	"created_at": "created_at",
}

// ListUsers returns paginated users with their roles.
func (r *GormRepository) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.conn(ctx).Model(&entity.DbUser{})
	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
		if trimmed := strings.TrimSpace(params.Role); trimmed != "" {
			query = query.Where("users.id IN (?)",
				r.conn(ctx).Table("user_roles").
					Select("user_roles.user_id").
					Joins("JOIN roles ON roles.id = user_roles.role_id").
					Where("roles.name = ?", trimmed))
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", kw, kw, kw)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, pageSize := normalizePage(base, 20, 100)
	offset := (page - 1) * pageSize

	if order, ok := sortOrder(base, userSortColumns); ok {
		query = query.Order(order)
	}

	var users []entity.DbUser
	if err := query.Preload("Roles", orderRolesByName).Order("users.id DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return users, meta, nil
}

// SoftDeleteUser deactivates a user by ID.
func (r *GormRepository) SoftDeleteUser(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return gorm.ErrRecordNotFound
	}
	// 已停用的用户在 MySQL 下 RowsAffected 为 0，这里先确认存在
	var count int64
	if err := r.conn(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.conn(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Update("is_active", false).Error
}

// CountUsers returns total user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	var count int64
	if err := r.conn(ctx).Model(&entity.DbUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AddUserRoles links roles to a user. Existing links are kept.
func (r *GormRepository) AddUserRoles(ctx context.Context, userID uint, roleIDs []uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if userID == 0 {
		return fmt.Errorf("invalid user id")
	}
	if len(roleIDs) == 0 {
		return nil
	}
	links := make([]entity.DbUserRole, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		links = append(links, entity.DbUserRole{UserID: userID, RoleID: roleID})
	}
	return translateError(r.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error)
}

// RemoveUserRoles unlinks roles from a user.
func (r *GormRepository) RemoveUserRoles(ctx context.Context, userID uint, roleIDs []uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if userID == 0 {
		return fmt.Errorf("invalid user id")
	}
	if len(roleIDs) == 0 {
		return nil
	}
	return r.conn(ctx).Where("user_id = ? AND role_id IN ?", userID, roleIDs).Delete(&entity.DbUserRole{}).Error
}
