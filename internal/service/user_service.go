package service

import (
	"blog/internal/entity"
	"blog/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// UserService 用户与角色管理
type UserService struct {
	repo model.Repository
}

// NewUserService 创建用户服务实例
func NewUserService(repo model.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetUser loads a user with roles.
func (s *UserService) GetUser(ctx context.Context, userID uint) (*entity.DbUser, error) {
	user, err := s.repo.GetUserWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageFailure("get_user_with_roles", err)
	}
	return user, nil
}

// ListUsers returns a page of users with their roles.
func (s *UserService) ListUsers(ctx context.Context, query *entity.UserQuery) ([]entity.UserSummary, *entity.Meta, error) {
	users, meta, err := s.repo.ListUsers(ctx, query)
	if err != nil {
		return nil, nil, storageFailure("list_users", err)
	}
	out := make([]entity.UserSummary, 0, len(users))
	for _, user := range users {
		out = append(out, user.ToSummary())
	}
	return out, meta, nil
}

// GetUserRoles returns the role names of a user.
func (s *UserService) GetUserRoles(ctx context.Context, userID uint) ([]string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.RoleNames(), nil
}

// UpdateUserRoles makes the user's role set equal to roles. Roles already held
// and still wanted are left untouched.
func (s *UserService) UpdateUserRoles(ctx context.Context, userID uint, roles []string) ([]string, error) {
	wanted := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, name := range roles {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, validationError("role name must not be empty")
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		wanted = append(wanted, trimmed)
	}

	var result []string
	err := s.repo.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserWithRoles(ctx, userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		current := make(map[string]uint, len(user.Roles))
		for _, role := range user.Roles {
			current[role.Name] = role.ID
		}

		var toAdd []uint
		for _, name := range wanted {
			role, err := s.repo.GetRoleByName(ctx, name)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return fmt.Errorf("%w: role '%s' not found", ErrRoleNotFound, name)
				}
				return err
			}
			if _, ok := current[name]; !ok {
				toAdd = append(toAdd, role.ID)
			}
		}

		var toRemove []uint
		for name, id := range current {
			if _, ok := seen[name]; !ok {
				toRemove = append(toRemove, id)
			}
		}

		if err := s.repo.RemoveUserRoles(ctx, userID, toRemove); err != nil {
			return err
		}
		if err := s.repo.AddUserRoles(ctx, userID, toAdd); err != nil {
			return err
		}

		updated, err := s.repo.GetUserWithRoles(ctx, userID)
		if err != nil {
			return err
		}
		result = updated.RoleNames()
		return nil
	})
	if err != nil {
		return nil, txFailure("update_user_roles", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "roles": result}).Info("user roles updated")
	return result, nil
}

// DeactivateUser soft deletes a user. Administrators cannot deactivate themselves.
func (s *UserService) DeactivateUser(ctx context.Context, actorID, userID uint) error {
	if actorID != 0 && actorID == userID {
		return validationError("cannot deactivate your own account")
	}
	if err := s.repo.SoftDeleteUser(ctx, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageFailure("soft_delete_user", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "actor_id": actorID}).Info("user deactivated")
	return nil
}
