package service

import (
	"blog/internal/entity"
	"blog/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"
)

// CategoryService 分类管理
type CategoryService struct {
	repo model.Repository
}

// NewCategoryService 创建分类服务实例
func NewCategoryService(repo model.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns categories, optionally active ones only.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]entity.CategorySummary, error) {
	categories, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, storageFailure("list_categories", err)
	}
	out := make([]entity.CategorySummary, 0, len(categories))
	for _, category := range categories {
		out = append(out, category.ToSummary())
	}
	return out, nil
}

// Get loads a category by ID.
func (s *CategoryService) Get(ctx context.Context, id uint) (*entity.DbCategory, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get_category", err)
	}
	return category, nil
}

// GetActiveBySlug loads an active category by slug.
func (s *CategoryService) GetActiveBySlug(ctx context.Context, slug string) (*entity.DbCategory, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get_category_by_slug", err)
	}
	if !category.IsActive {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create adds a category with a unique slug.
func (s *CategoryService) Create(ctx context.Context, req entity.CategoryCreateRequest) (*entity.DbCategory, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if name == "" {
		return nil, validationError("name is required")
	}
	if !ValidSlug(slug) {
		return nil, validationError("slug must contain lowercase letters, digits and single hyphens")
	}
	if err := s.ensureSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	category := &entity.DbCategory{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category slug already exists", ErrConflict)
		}
		return nil, storageFailure("create_category", err)
	}
	return category, nil
}

// Update applies a partial update.
func (s *CategoryService) Update(ctx context.Context, id uint, req entity.CategoryUpdateRequest) (*entity.DbCategory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var updates entity.CategoryUpdates
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name is required")
		}
		updates.Name = &name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if !ValidSlug(slug) {
			return nil, validationError("slug must contain lowercase letters, digits and single hyphens")
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		updates.Slug = &slug
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		updates.Description = &description
	}
	updates.IsActive = req.IsActive

	if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category slug already exists", ErrConflict)
		}
		return nil, storageFailure("update_category", err)
	}
	return s.Get(ctx, id)
}

// Delete soft deletes a category that has no active posts.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountCategoryPosts(ctx, id)
	if err != nil {
		return storageFailure("count_category_posts", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete category with associated posts", ErrConflict)
	}
	inactive := false
	if err := s.repo.UpdateCategory(ctx, id, entity.CategoryUpdates{IsActive: &inactive}); err != nil {
		return storageFailure("deactivate_category", err)
	}
	return nil
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, slug string, selfID uint) error {
	existing, err := s.repo.GetCategoryBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return fmt.Errorf("%w: category slug already exists", ErrConflict)
		}
		return nil
	case errors.Is(err, model.ErrNotFound):
		return nil
	default:
		return storageFailure("get_category_by_slug", err)
	}
}
