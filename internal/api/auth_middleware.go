package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"blog/internal/auth"
	"blog/internal/entity"
	"blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	currentUserContextKey = "current-user"
)

// AuthMiddleware JWT 认证中间件，每次请求都重新加载用户与角色
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "could not validate credentials",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.authService.ResolveAccessToken(ctx, tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidToken):
				c.Header("WWW-Authenticate", "Bearer")
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeInvalidToken,
					Message: "could not validate credentials",
				})
			case errors.Is(err, service.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "user not found or inactive",
				})
			default:
				logrus.WithError(err).Error("failed to resolve access token")
				c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
					Code:    ErrCodeInternalError,
					Message: "failed to validate user",
				})
			}
			return
		}

		c.Set(currentUserContextKey, &entity.CurrentUser{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Roles:     user.RoleNames(),
		})
		c.Next()
	}
}

// RequireRole 角色守卫中间件，必须挂在 AuthMiddleware 之后
func (h *HTTPHandler) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}
		if !user.HasRole(role) {
			Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission 权限守卫中间件，按角色表展开权限
func (h *HTTPHandler) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}
		if !auth.HasPermission(user.Roles, permission) {
			Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *entity.CurrentUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.CurrentUser)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
