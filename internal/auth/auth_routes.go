package auth

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authenticator middleware.Authenticator) {
	auth := r.Group("/auth")
	{
		auth.POST("/register",
			middleware.RateLimitByIP(0.1, 3),
			middleware.OptionalAuth(authenticator),
			handler.Register,
		)
		auth.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		auth.GET("/me", middleware.AuthMiddleware(authenticator), middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/logout", middleware.AuthMiddleware(authenticator), handler.Logout)
	}
}
