package api

import (
	"blog/internal/auth"
	"blog/internal/entity"

	"github.com/gin-gonic/gin"
)

// Router 构建完整的路由表
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()

	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())
	if h.metrics != nil {
		r.Use(h.metrics.Middleware())
		r.GET("/metrics", h.metrics.Handler())
	}

	r.GET("/health", h.Health)
	r.NoRoute(func(c *gin.Context) {
		NotFound(c, ErrCodeNotFound, "route not found")
	})

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.RateLimit("login"), h.Login)
	authGroup.POST("/refresh", h.RateLimit("refresh"), h.Refresh)
	authGroup.POST("/logout", h.Logout)
	authGroup.POST("/logout-all", h.AuthMiddleware(), h.LogoutAll)

	v1.GET("/users/me", h.AuthMiddleware(), h.Me)

	v1.GET("/posts", h.ListPublishedPosts)
	v1.GET("/posts/:slug", h.GetPublishedPost)
	v1.GET("/categories", h.ListCategories)
	v1.GET("/categories/:slug/posts", h.ListCategoryPosts)

	admin := v1.Group("/admin")
	admin.Use(h.AuthMiddleware(), h.RequireRole(entity.RoleAdmin))

	postAdmin := admin.Group("/posts")
	postAdmin.GET("", h.RequirePermission(auth.PermPostRead), h.AdminListPosts)
	postAdmin.POST("", h.RequirePermission(auth.PermPostCreate), h.AdminCreatePost)
	postAdmin.GET("/:id", h.RequirePermission(auth.PermPostRead), h.AdminGetPost)
	postAdmin.PUT("/:id", h.RequirePermission(auth.PermPostUpdate), h.AdminUpdatePost)
	postAdmin.DELETE("/:id", h.RequirePermission(auth.PermPostDelete), h.AdminDeletePost)

	categoryAdmin := admin.Group("/categories")
	categoryAdmin.GET("", h.RequirePermission(auth.PermCategoryRead), h.AdminListCategories)
	categoryAdmin.POST("", h.RequirePermission(auth.PermCategoryCreate), h.AdminCreateCategory)
	categoryAdmin.GET("/:id", h.RequirePermission(auth.PermCategoryRead), h.AdminGetCategory)
	categoryAdmin.PUT("/:id", h.RequirePermission(auth.PermCategoryUpdate), h.AdminUpdateCategory)
	categoryAdmin.DELETE("/:id", h.RequirePermission(auth.PermCategoryDelete), h.AdminDeleteCategory)

	userAdmin := admin.Group("/users")
	userAdmin.GET("", h.RequirePermission(auth.PermUserRead), h.ListUsers)
	userAdmin.GET("/:id", h.RequirePermission(auth.PermUserRead), h.GetUser)
	userAdmin.PUT("/:id/roles", h.RequirePermission(auth.PermUserUpdate), h.UpdateUserRoles)
	userAdmin.DELETE("/:id", h.RequirePermission(auth.PermUserDelete), h.DeactivateUser)

	admin.POST("/tokens/sweep", h.RequirePermission(auth.PermAdminUpdate), h.SweepTokens)

	return r
}
