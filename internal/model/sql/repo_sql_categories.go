package sql

import (
	"blog/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CreateCategory inserts a new category.
func (r *GormRepository) CreateCategory(ctx context.Context, category *entity.DbCategory) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if category == nil {
		return fmt.Errorf("category is nil")
	}
	return translateError(r.conn(ctx).Create(category).Error)
}

// UpdateCategory updates category fields.
func (r *GormRepository) UpdateCategory(ctx context.Context, id uint, updates entity.CategoryUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid category id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return translateError(r.conn(ctx).Model(&entity.DbCategory{}).Where("id = ?", id).Updates(updates.ToMap()).Error)
}

// GetCategoryByID loads a category by ID.
func (r *GormRepository) GetCategoryByID(ctx context.Context, id uint) (*entity.DbCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var category entity.DbCategory
	if err := r.conn(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryBySlug loads a category by slug.
func (r *GormRepository) GetCategoryBySlug(ctx context.Context, slug string) (*entity.DbCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var category entity.DbCategory
	if err := r.conn(ctx).Where("slug = ?", trimmed).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns categories ordered by name.
func (r *GormRepository) ListCategories(ctx context.Context, activeOnly bool) ([]entity.DbCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	query := r.conn(ctx).Model(&entity.DbCategory{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []entity.DbCategory
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CountCategoryPosts counts active posts attached to a category.
func (r *GormRepository) CountCategoryPosts(ctx context.Context, categoryID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	var count int64
	if err := r.conn(ctx).Model(&entity.DbPost{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
