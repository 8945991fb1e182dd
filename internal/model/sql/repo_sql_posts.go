package sql

import (
	"blog/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CreatePost inserts a new post.
func (r *GormRepository) CreatePost(ctx context.Context, post *entity.DbPost) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if post == nil {
		return fmt.Errorf("post is nil")
	}
	return translateError(r.conn(ctx).Omit("Category", "Author").Create(post).Error)
}

// UpdatePost updates post fields.
func (r *GormRepository) UpdatePost(ctx context.Context, id uint, updates entity.PostUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid post id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return translateError(r.conn(ctx).Model(&entity.DbPost{}).Where("id = ?", id).Updates(updates.ToMap()).Error)
}

// GetPostByID loads a post with its category and author.
func (r *GormRepository) GetPostByID(ctx context.Context, id uint) (*entity.DbPost, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var post entity.DbPost
	if err := r.conn(ctx).Preload("Category").Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostBySlug loads a post by slug.
func (r *GormRepository) GetPostBySlug(ctx context.Context, slug string) (*entity.DbPost, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var post entity.DbPost
	if err := r.conn(ctx).Preload("Category").Preload("Author").Where("slug = ?", trimmed).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

var postSortColumns = map[string]string{
	"title":      "title",
	"slug":       "slug",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListPosts returns paginated posts, newest first unless sort_by names a known column.
func (r *GormRepository) ListPosts(ctx context.Context, params *entity.PostQuery) ([]entity.DbPost, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.conn(ctx).Model(&entity.DbPost{})
	var base *entity.BaseParams
	maxSize := 100
	if params != nil {
		base = &params.BaseParams
		if params.PublishedOnly {
			query = query.Where("is_published = ? AND is_active = ?", true, true)
			maxSize = 50
		}
		if params.CategoryID > 0 {
			query = query.Where("category_id = ?", params.CategoryID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, pageSize := normalizePage(base, 10, maxSize)
	offset := (page - 1) * pageSize

	if order, ok := sortOrder(base, postSortColumns); ok {
		query = query.Order(order)
	}

	var posts []entity.DbPost
	if err := query.Preload("Category").Preload("Author").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(pageSize).Find(&posts).Error; err != nil {
		return nil, nil, err
	}

	return posts, r.calculatePagination(total, page, pageSize), nil
}
