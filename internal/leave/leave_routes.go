package leave

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
	leaves := r.Group("/leaves")
	leaves.Use(authMiddleware)
	{
		leaves.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionListAll),
			handler.GetAll,
		)
		leaves.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.GET("/me", handler.GetMine)
		leaves.GET("/employee/:employeeId", handler.GetByEmployee)
		leaves.GET("/:id", handler.GetByID)
		leaves.PUT("/:id/status",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionUpdateStatus),
			handler.UpdateStatus,
		)
		leaves.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Delete,
		)
	}
}
