package entity

import "time"

// DbRole is a named bundle of permission strings.
type DbRole struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Name        string      `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string      `gorm:"column:description;type:varchar(255)" json:"description"`
	Permissions StringArray `gorm:"column:permissions;type:json" json:"permissions"`
}

func (DbRole) TableName() string {
	return "roles"
}

// DbUserRole is the join row between users and roles.
type DbUserRole struct {
	UserID    uint      `gorm:"column:user_id;primaryKey"`
	RoleID    uint      `gorm:"column:role_id;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (DbUserRole) TableName() string {
	return "user_roles"
}
