package service

import (
	"blog/internal/entity"
	"blog/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minTitleLength = 3
	maxTitleLength = 200
)

// PostService 文章管理
type PostService struct {
	repo model.Repository
}

// NewPostService 创建文章服务实例
func NewPostService(repo model.Repository) *PostService {
	return &PostService{repo: repo}
}

// ListPublished returns published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context, params entity.BaseParams, categoryID uint) ([]entity.PostSummary, *entity.Meta, error) {
	return s.list(ctx, &entity.PostQuery{BaseParams: params, PublishedOnly: true, CategoryID: categoryID})
}

// ListAll returns every post for administrators.
func (s *PostService) ListAll(ctx context.Context, params entity.BaseParams) ([]entity.PostSummary, *entity.Meta, error) {
	return s.list(ctx, &entity.PostQuery{BaseParams: params})
}

func (s *PostService) list(ctx context.Context, query *entity.PostQuery) ([]entity.PostSummary, *entity.Meta, error) {
	posts, meta, err := s.repo.ListPosts(ctx, query)
	if err != nil {
		return nil, nil, storageFailure("list_posts", err)
	}
	out := make([]entity.PostSummary, 0, len(posts))
	for _, post := range posts {
		out = append(out, post.ToSummary())
	}
	return out, meta, nil
}

// GetPublishedBySlug loads a published, active post.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (*entity.DbPost, error) {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get_post_by_slug", err)
	}
	if !post.IsPublished || !post.IsActive {
		return nil, ErrNotFound
	}
	return post, nil
}

// Get loads any post by ID.
func (s *PostService) Get(ctx context.Context, id uint) (*entity.DbPost, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get_post", err)
	}
	return post, nil
}

// Create publishes a new post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, req entity.PostCreateRequest) (*entity.DbPost, error) {
	title := strings.TrimSpace(req.Title)
	slug := strings.TrimSpace(req.Slug)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if !ValidSlug(slug) {
		return nil, validationError("slug must contain lowercase letters, digits and single hyphens")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, validationError("content is required")
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	post := &entity.DbPost{
		Title:       title,
		Slug:        slug,
		Excerpt:     strings.TrimSpace(req.Excerpt),
		Content:     req.Content,
		ContentHTML: RenderContent(req.Content),
		IsPublished: req.IsPublished,
		IsActive:    true,
		CategoryID:  req.CategoryID,
		AuthorID:    authorID,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, fmt.Errorf("%w: post slug already exists", ErrConflict)
		}
		return nil, storageFailure("create_post", err)
	}
	return s.Get(ctx, post.ID)
}

// Update applies a partial update. Content changes re-render the HTML.
func (s *PostService) Update(ctx context.Context, id uint, req entity.PostUpdateRequest) (*entity.DbPost, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var updates entity.PostUpdates
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		updates.Title = &title
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
	if req.Excerpt != nil {
		excerpt := strings.TrimSpace(*req.Excerpt)
		updates.Excerpt = &excerpt
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, validationError("content is required")
		}
		rendered := RenderContent(*req.Content)
		updates.Content = req.Content
		updates.ContentHTML = &rendered
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		updates.CategoryID = req.CategoryID
	}
	updates.IsPublished = req.IsPublished

	if err := s.repo.UpdatePost(ctx, id, updates); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, fmt.Errorf("%w: post slug already exists", ErrConflict)
		}
		return nil, storageFailure("update_post", err)
	}
	return s.Get(ctx, id)
}

// Delete soft deletes a post.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inactive := false
	if err := s.repo.UpdatePost(ctx, id, entity.PostUpdates{IsActive: &inactive}); err != nil {
		return storageFailure("deactivate_post", err)
	}
	return nil
}

func (s *PostService) ensureCategory(ctx context.Context, categoryID uint) error {
	category, err := s.repo.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return validationError("category not found")
		}
		return storageFailure("get_category", err)
	}
	if !category.IsActive {
		return validationError("category not found")
	}
	return nil
}

func (s *PostService) ensureSlugFree(ctx context.Context, slug string, selfID uint) error {
	existing, err := s.repo.GetPostBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return fmt.Errorf("%w: post slug already exists", ErrConflict)
		}
		return nil
	case errors.Is(err, model.ErrNotFound):
		return nil
	default:
		return storageFailure("get_post_by_slug", err)
	}
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < minTitleLength || n > maxTitleLength {
		return validationError("title must be between %d and %d characters", minTitleLength, maxTitleLength)
	}
	return nil
}
