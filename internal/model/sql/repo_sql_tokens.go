package sql

import (
	"blog/internal/entity"
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreateRefreshToken stores an issued refresh token.
func (r *GormRepository) CreateRefreshToken(ctx context.Context, token *entity.DbRefreshToken) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if token == nil {
		return fmt.Errorf("refresh token is nil")
	}
	if token.UserID == 0 || strings.TrimSpace(token.Token) == "" {
		return fmt.Errorf("invalid refresh token record")
	}
	token.IsActive = true
	return translateError(r.conn(ctx).Create(token).Error)
}

// GetRefreshToken looks up a record by its token string.
func (r *GormRepository) GetRefreshToken(ctx context.Context, token string) (*entity.DbRefreshToken, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if strings.TrimSpace(token) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var record entity.DbRefreshToken
	if err := r.conn(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteRefreshToken removes a record by ID. Zero affected rows means another
// caller already consumed it.
func (r *GormRepository) DeleteRefreshToken(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return gorm.ErrRecordNotFound
	}
	result := r.conn(ctx).Where("id = ?", id).Delete(&entity.DbRefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRefreshTokenByValue removes a record by token string.
func (r *GormRepository) DeleteRefreshTokenByValue(ctx context.Context, token string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}
	result := r.conn(ctx).Where("token = ?", token).Delete(&entity.DbRefreshToken{})
	return result.RowsAffected, result.Error
}

// DeleteUserRefreshTokens removes every refresh token owned by a user.
func (r *GormRepository) DeleteUserRefreshTokens(ctx context.Context, userID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	if userID == 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	result := r.conn(ctx).Where("user_id = ?", userID).Delete(&entity.DbRefreshToken{})
	return result.RowsAffected, result.Error
}

// DeleteExpiredRefreshTokens removes records whose expiry is strictly before now.
func (r *GormRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	result := r.conn(ctx).Where("expires_at < ?", now).Delete(&entity.DbRefreshToken{})
	return result.RowsAffected, result.Error
}
