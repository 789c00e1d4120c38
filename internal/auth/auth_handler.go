package auth

import (
	"net/http"

	"go-hrms/internal/domain"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var registerMessages = map[string]string{
	"name.required":          "Please add a name",
	"email.required":         "Please add an email",
	"email.email":            "Please provide a valid email",
	"password.required":      "Please add a password",
	"password.min":           "Password must be at least 6 characters",
	"password.max":           "Password must be at most 72 characters",
	"department.required":    "Please add a department",
	"position.required":      "Please add a position",
	"contactNumber.required": "Please add a contact number",
}

type CookieConfig struct {
	MaxAge int
	Secure bool
}

type Handler struct {
	service Service
	cookie  CookieConfig
	logger  *zap.Logger
}

func NewHandler(s Service, cookie CookieConfig, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, cookie: cookie, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("auth request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err, registerMessages))
		return
	}

	var caller *domain.Actor
	if actor, ok := middleware.CurrentActor(c); ok {
		caller = &actor
	}

	res, err := h.service.Register(c.Request.Context(), caller, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.setTokenCookie(c, res.Token, h.cookie.MaxAge)
	response.Token(c, http.StatusCreated, res.Token, res.Employee)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.setTokenCookie(c, res.Token, h.cookie.MaxAge)
	response.Token(c, http.StatusOK, res.Token, res.Employee)
}

func (h *Handler) Me(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	resp, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{}, nil)
}
