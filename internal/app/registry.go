package app

import (
	"database/sql"

	"go-hrms/internal/auth"
	"go-hrms/internal/config"
	"go-hrms/internal/employee"
	"go-hrms/internal/funtask"
	"go-hrms/internal/leave"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/middleware"
	"go-hrms/internal/project"
	"go-hrms/internal/rbac"
	"go-hrms/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	funTaskRepo := funtask.NewRepository(gormDB)
	projectRepo := project.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return err
	}

	// --- Services ---
	tokens := auth.NewTokenManager(cfg.JWT)
	hasher := auth.NewHasher(cfg.BcryptCost)
	board := funtask.NewLeaderboard(rdb, funTaskRepo)

	authService := auth.NewService(db, employeeRepo, outboxRepo, tokens, hasher, rdb)
	employeeService := employee.NewService(db, employeeRepo, rbacService, hasher, rdb)
	leaveService := leave.NewService(db, leaveRepo, outboxRepo, rbacService)
	funTaskService := funtask.NewService(db, funTaskRepo, outboxRepo, rbacService, board)
	projectService := project.NewService(db, projectRepo, rbacService)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		MaxAge: int(cfg.JWT.Expire.Seconds()),
		Secure: cfg.IsProduction(),
	})
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	funTaskHandler := funtask.NewHandler(funTaskService)
	projectHandler := project.NewHandler(projectService)
	rbacHandler := rbac.NewHandler(rbacService)

	authMiddleware := middleware.AuthMiddleware(authService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authService)
		employee.RegisterRoutes(api, employeeHandler, rbacService, authMiddleware)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMiddleware, rdb)
		funtask.RegisterRoutes(api, funTaskHandler, rbacService, authMiddleware, rdb)
		project.RegisterRoutes(api, projectHandler, rbacService, authMiddleware, rdb)
		rbac.RegisterRoutes(api, rbacHandler, authMiddleware)
	}

	return nil
}
