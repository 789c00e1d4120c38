package funtask

import (
	"go-hrms/internal/middleware"
	"go-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	authMiddleware gin.HandlerFunc,
	rdb *redis.Client,
) {
	tasks := r.Group("/fun-tasks")
	tasks.Use(authMiddleware)
	{
		tasks.GET("", handler.GetAll)
		tasks.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceFunTask, rbac.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		tasks.GET("/leaderboard",
			middleware.RateLimitByUser(3, 10),
			handler.Leaderboard,
		)
		tasks.GET("/employee/:employeeId", handler.GetByEmployee)
		tasks.GET("/:id", handler.GetByID)
		tasks.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			handler.Update,
		)
		tasks.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceFunTask, rbac.ActionDelete),
			handler.Delete,
		)
	}
}
