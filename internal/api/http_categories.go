package api

import (
	"context"
	"net/http"
	"time"

	"blog/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	categories, err := h.categoryService.List(ctx, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{Categories: categories})
}

func (h *HTTPHandler) AdminListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	categories, err := h.categoryService.List(ctx, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{Categories: categories})
}

func (h *HTTPHandler) AdminGetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "category")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category, err := h.categoryService.Get(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category.ToSummary())
}

func (h *HTTPHandler) AdminCreateCategory(c *gin.Context) {
	var req entity.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "invalid category payload", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category, err := h.categoryService.Create(ctx, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category.ToSummary())
}

func (h *HTTPHandler) AdminUpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "category")
	if !ok {
		return
	}

	var req entity.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "invalid category payload", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category, err := h.categoryService.Update(ctx, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category.ToSummary())
}

// AdminDeleteCategory 软删除分类，仍有文章时返回 409
func (h *HTTPHandler) AdminDeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "category")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.categoryService.Delete(ctx, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
