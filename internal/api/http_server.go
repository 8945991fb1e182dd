package api

import (
	"blog/internal/config"
	"blog/internal/metrics"
	"blog/internal/model"
	"blog/internal/ratelimit"
	"blog/internal/service"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg  config.Config
	repo model.Repository

	// 服务层
	authService     *service.AuthService
	userService     *service.UserService
	postService     *service.PostService
	categoryService *service.CategoryService

	metrics *metrics.Metrics
	// 登录/刷新限流，为 nil 时不限流
	limiter ratelimit.Limiter
}

// Options 可选依赖
type Options struct {
	Metrics *metrics.Metrics
	Limiter ratelimit.Limiter
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, authSvc *service.AuthService, opts Options) *HTTPHandler {
	return &HTTPHandler{
		cfg:             cfg,
		repo:            repo,
		authService:     authSvc,
		userService:     service.NewUserService(repo),
		postService:     service.NewPostService(repo),
		categoryService: service.NewCategoryService(repo),
		metrics:         opts.Metrics,
		limiter:         opts.Limiter,
	}
}
