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

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "invalid registration payload", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	_, err := h.authService.Register(ctx, service.RegisterInput{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.MessageResponse{Message: "User registered successfully"})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pair, err := h.authService.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *HTTPHandler) Refresh(c *gin.Context) {
	var req entity.AuthRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "refresh_token")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pair, err := h.authService.RefreshTokenPair(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		// 刷新时用户失效属于认证失败
		if errors.Is(err, service.ErrUserNotFound) {
			ErrorResponse(c, http.StatusUnauthorized, ErrCodeUserNotFound, "user not found or inactive")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout 吊销单个刷新令牌，令牌不存在也返回成功
func (h *HTTPHandler) Logout(c *gin.Context) {
	var req entity.AuthRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "refresh_token")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LogoutAll 吊销当前用户的全部刷新令牌
func (h *HTTPHandler) LogoutAll(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	removed, err := h.authService.LogoutAll(ctx, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"removed": removed,
	}).Info("user logged out everywhere")
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.userService.GetUser(ctx, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProfileResponse{
		UserSummary: dbUser.ToSummary(),
		Permissions: auth.PermissionsFor(dbUser.RoleNames()),
	})
}
