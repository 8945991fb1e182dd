package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"blog/internal/entity"

	"github.com/gin-gonic/gin"
)

// ListPublishedPosts 公开文章列表，仅返回已发布且未删除的文章
func (h *HTTPHandler) ListPublishedPosts(c *gin.Context) {
	var params entity.BaseParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	posts, meta, err := h.postService.ListPublished(ctx, params, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.PostListResponse{Posts: posts, Meta: meta})
}

func (h *HTTPHandler) GetPublishedPost(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		MissingField(c, "slug")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	post, err := h.postService.GetPublishedBySlug(ctx, slug)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post.ToSummary())
}

// ListCategoryPosts 某个启用分类下的已发布文章
func (h *HTTPHandler) ListCategoryPosts(c *gin.Context) {
	var params entity.BaseParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category, err := h.categoryService.GetActiveBySlug(ctx, strings.TrimSpace(c.Param("slug")))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	posts, meta, err := h.postService.ListPublished(ctx, params, category.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.PostListResponse{Posts: posts, Meta: meta})
}

func (h *HTTPHandler) AdminListPosts(c *gin.Context) {
	var params entity.BaseParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	posts, meta, err := h.postService.ListAll(ctx, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.PostListResponse{Posts: posts, Meta: meta})
}

func (h *HTTPHandler) AdminGetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "post")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	post, err := h.postService.Get(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post.ToSummary())
}

func (h *HTTPHandler) AdminCreatePost(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "invalid post payload", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	post, err := h.postService.Create(ctx, user.ID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post.ToSummary())
}

func (h *HTTPHandler) AdminUpdatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "post")
	if !ok {
		return
	}

	var req entity.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "invalid post payload", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	post, err := h.postService.Update(ctx, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post.ToSummary())
}

func (h *HTTPHandler) AdminDeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "post")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.postService.Delete(ctx, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
