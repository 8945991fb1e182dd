package entity

// UserUpdates 用户更新字段
type UserUpdates struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
	IsActive     *bool
	IsVerified   *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.FirstName != nil {
		updates["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		updates["last_name"] = *u.LastName
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	if u.IsVerified != nil {
		updates["is_verified"] = *u.IsVerified
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// CategoryUpdates 分类更新字段
type CategoryUpdates struct {
	Name        *string
	Slug        *string
	Description *string
	IsActive    *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u CategoryUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Slug != nil {
		updates["slug"] = *u.Slug
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u CategoryUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// PostUpdates 文章更新字段
type PostUpdates struct {
	Title       *string
	Slug        *string
	Excerpt     *string
	Content     *string
	ContentHTML *string
	IsPublished *bool
	IsActive    *bool
	CategoryID  *uint
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u PostUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Slug != nil {
		updates["slug"] = *u.Slug
	}
	if u.Excerpt != nil {
		updates["excerpt"] = *u.Excerpt
	}
	if u.Content != nil {
		updates["content"] = *u.Content
	}
	if u.ContentHTML != nil {
		updates["content_html"] = *u.ContentHTML
	}
	if u.IsPublished != nil {
		updates["is_published"] = *u.IsPublished
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	if u.CategoryID != nil {
		updates["category_id"] = *u.CategoryID
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u PostUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
