package middleware

import (
	"go-hrms/internal/domain"
	"go-hrms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by rbac.Service.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

// RBACAuthorize is a route gate: it asks whether the caller's role could
// perform action on resource at all. Record level checks happen in services.
func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abortWithError(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:      actor.Role,
			Resource:  resource,
			Action:    action,
			Relations: []string{domain.RelationWildcard},
		})
		if err != nil {
			zap.L().Named("middleware.rbac").Error("rbac gate failed",
				zap.String("resource", resource),
				zap.String("action", action),
				zap.Error(err),
			)
			abortWithError(c, apperror.ErrInternal)
			return
		}

		if !allowed {
			abortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}
