package app

import (
	"net/http"

	"go-hrms/internal/config"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/connection"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the stores, migrates the schema and mounts every module
// on router.
func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := Migrate(gormDB); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.RedisPassword, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader, middleware.IdempotencyHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
		}),
		middleware.RequestID(),
		middleware.ContextLogger(zap.L().Named("http")),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return registerModules(router, cfg, sqlDB, gormDB, redisClient)
}
