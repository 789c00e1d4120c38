package middleware

import (
	"go-hrms/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger puts a request scoped logger carrying request_id and
// employee_id into the request context. It must run after RequestID and,
// when used on authenticated groups, after AuthMiddleware.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqLogger := logger.With(
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("employee_id", c.GetString(ContextEmployeeID)),
		)

		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
		c.Next()
	}
}
