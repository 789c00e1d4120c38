package project

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
	projects := r.Group("/projects")
	projects.Use(authMiddleware)
	{
		projects.GET("", handler.GetAll)
		projects.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, rbac.ResourceProject, rbac.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		projects.GET("/employee/:employeeId", handler.GetByEmployee)
		projects.GET("/:id", handler.GetByID)
		projects.PUT("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceProject, rbac.ActionUpdate),
			handler.Update,
		)
		projects.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceProject, rbac.ActionDelete),
			handler.Delete,
		)
		projects.POST("/:id/tasks",
			middleware.RBACAuthorize(rbacService, rbac.ResourceProject, rbac.ActionAddTask),
			handler.AddTask,
		)
		projects.PUT("/:id/tasks/:taskId", handler.UpdateTask)
		projects.DELETE("/:id/tasks/:taskId", handler.DeleteTask)
	}
}
