package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blog/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.userService.ListUsers(ctx, &query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.UserListResponse{Users: users, Meta: meta})
}

func (h *HTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToSummary())
}

// UpdateUserRoles 将用户角色整体替换为请求中的集合
func (h *HTTPHandler) UpdateUserRoles(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	var req entity.UserRolesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "roles")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	roles, err := h.userService.UpdateUserRoles(ctx, id, req.Roles)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": id, "roles": roles})
}

// DeactivateUser 软删除用户并吊销其刷新令牌
func (h *HTTPHandler) DeactivateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	var actorID uint
	if user := CurrentUser(c); user != nil {
		actorID = user.ID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userService.DeactivateUser(ctx, actorID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	if _, err := h.authService.LogoutAll(ctx, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SweepTokens 清理过期的刷新令牌
func (h *HTTPHandler) SweepTokens(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	removed, err := h.authService.SweepExpiredTokens(ctx, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SweepResponse{Removed: removed})
}

// parseIDParam 解析路径中的 :id，失败时已写入 400 响应
func parseIDParam(c *gin.Context, resource string) (uint, bool) {
	idValue := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(idValue, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid "+resource+" id")
		return 0, false
	}
	return uint(id), true
}
