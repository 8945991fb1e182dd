package entity

import "time"

// DbRefreshToken is a server-side record of an issued refresh token.
type DbRefreshToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `gorm:"column:token;type:varchar(512);uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null" json:"expires_at"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (DbRefreshToken) TableName() string {
	return "refresh_tokens"
}

// Expired reports whether the record is past its expiry at now.
func (t DbRefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

type SweepResponse struct {
	Removed int64 `json:"removed"`
}
