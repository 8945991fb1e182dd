package model

import (
	"blog/internal/entity"
	"context"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// UserRepository 用户存储
type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	// GetUserWithRoles eager-loads the role associations.
	GetUserWithRoles(ctx context.Context, id uint) (*entity.DbUser, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	// SoftDeleteUser flips is_active to false.
	SoftDeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)
	AddUserRoles(ctx context.Context, userID uint, roleIDs []uint) error
	RemoveUserRoles(ctx context.Context, userID uint, roleIDs []uint) error
}

// RoleRepository 角色存储
type RoleRepository interface {
	GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error)
	ListRoles(ctx context.Context) ([]entity.DbRole, error)
	CreateRole(ctx context.Context, role *entity.DbRole) error
	UpdateRole(ctx context.Context, id uint, description string, permissions entity.StringArray) error
}

// RefreshTokenRepository 刷新令牌存储
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *entity.DbRefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*entity.DbRefreshToken, error)
	// DeleteRefreshToken removes the row by id and returns ErrNotFound when nothing was deleted.
	DeleteRefreshToken(ctx context.Context, id uint) error
	DeleteRefreshTokenByValue(ctx context.Context, token string) (int64, error)
	DeleteUserRefreshTokens(ctx context.Context, userID uint) (int64, error)
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// CategoryRepository 分类存储
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *entity.DbCategory) error
	UpdateCategory(ctx context.Context, id uint, updates entity.CategoryUpdates) error
	GetCategoryByID(ctx context.Context, id uint) (*entity.DbCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.DbCategory, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]entity.DbCategory, error)
	CountCategoryPosts(ctx context.Context, categoryID uint) (int64, error)
}

// PostRepository 文章存储
type PostRepository interface {
	CreatePost(ctx context.Context, post *entity.DbPost) error
	UpdatePost(ctx context.Context, id uint, updates entity.PostUpdates) error
	GetPostByID(ctx context.Context, id uint) (*entity.DbPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*entity.DbPost, error)
	ListPosts(ctx context.Context, params *entity.PostQuery) ([]entity.DbPost, *entity.Meta, error)
}

// Transactor runs fn inside one database transaction. Repository calls made
// with the ctx handed to fn join that transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository 定义数据库操作接口
type Repository interface {
	UserRepository
	RoleRepository
	RefreshTokenRepository
	CategoryRepository
	PostRepository
	Transactor

	Close() error
}
