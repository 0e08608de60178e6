package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userdir/backend/config"
	"userdir/backend/internal/api/handler"
	"userdir/backend/internal/api/middleware"
	"userdir/backend/internal/model"
	"userdir/backend/pkg/jwt"
	"userdir/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，公开接口加速率限制）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 关键词搜索（公开接口）
		v1.GET("/users/search", middleware.RateLimit(rdb, 30, time.Minute), h.Auth.Search)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			admin := middleware.RoleAuth(model.RoleAdmin)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.GET("/paginated", h.User.ListPaginated)
				users.GET("/sorted", h.User.ListSorted)
				users.GET("/filter", h.User.Filter)
				users.GET("/by-city", h.User.ListByCity)
				users.GET("/count-by-domain", h.User.CountByEmailDomain)
				users.GET("/with-department", h.User.ListWithDepartment)
				users.GET("/by-department", h.User.ListByDepartmentName)
				users.GET("/sorted-by-department", h.User.ListSortedByDepartmentName)
				users.GET("/summaries", h.User.Summaries)
				users.GET("/user-departments", h.User.UserDepartments)

				users.POST("", admin, h.User.Create)
				users.PUT("/:id", admin, h.User.Update)
				users.DELETE("/:id", admin, h.User.Delete)
				users.POST("/assign-department", admin, h.User.AssignDepartment)
				users.PATCH("/emails", admin, h.User.BulkUpdateEmails)
				users.DELETE("/by-city", admin, h.User.BulkDeleteByCity)
				users.GET("/export", admin, h.Export.ExportUsers)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.List)
				departments.GET("/:id", h.Department.Get)
				departments.GET("/by-name", h.Department.GetByName)
				departments.GET("/count", h.Department.CountByName)
				departments.GET("/filter", h.Department.FilterByName)
				departments.GET("/sorted", h.Department.ListSorted)
				departments.GET("/paginated", h.Department.ListPaginated)

				departments.POST("", admin, h.Department.Create)
				departments.PUT("/:id", admin, h.Department.Update)
				departments.DELETE("/:id", admin, h.Department.Delete)
				departments.PATCH("/:id/name", admin, h.Department.Rename)
				departments.DELETE("/by-name", admin, h.Department.BulkDeleteByName)
			}
		}
	}

	return r
}
