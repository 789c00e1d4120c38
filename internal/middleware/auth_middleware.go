package middleware

import (
	"context"
	"strings"

	"go-hrms/internal/domain"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextEmployeeID = "employee_id"
	ContextRole       = "role"
	ContextActor      = "actor"

	TokenCookieName = "token"
)

// Authenticator resolves a raw bearer token into the calling employee.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

func bearerToken(c *gin.Context) string {
	if token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); found && token != "" {
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil {
		return cookie
	}
	return ""
}

func setActor(c *gin.Context, actor domain.Actor) {
	c.Set(ContextActor, actor)
	c.Set(ContextEmployeeID, actor.ID.String())
	c.Set(ContextRole, actor.Role)

	ctx := contextutil.WithEmployeeID(c.Request.Context(), actor.ID.String())
	reqLogger := contextutil.GetLogger(ctx, nil).With(zap.String("employee_id", actor.ID.String()))
	c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
	c.Abort()
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, apperror.ErrUnauthorized)
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if actor, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

// CurrentActor returns the caller attached by AuthMiddleware or OptionalAuth.
func CurrentActor(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
