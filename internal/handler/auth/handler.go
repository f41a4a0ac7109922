package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/service/auth"
	pkgauth "github.com/jwalitptl/chronosync/pkg/auth"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

type Handler struct {
	svc auth.AuthServicer
}

func NewHandler(svc auth.AuthServicer) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes registers login. extra runs before the handler,
// e.g. a rate limiter.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup, extra ...gin.HandlerFunc) {
	r.POST("/auth/login", append(extra, h.Login)...)
}

func (h *Handler) RegisterRoutes(t handler.Tiers) {
	authGroup := t.Employee.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/validate-token", h.ValidateToken)
	}
}

func (h *Handler) Login(c *gin.Context) {
	req, err := handler.BindJSON[model.LoginRequest]()(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	actor, err := principal.FromContext(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.Logout(c.Request.Context(), actor); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithOK(c)
}

func (h *Handler) ValidateToken(c *gin.Context) {
	actor, err := principal.FromContext(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	claims := pkgauth.FromContext(c.Request.Context())
	httputil.RespondWithSuccess(c, h.svc.Validate(c.Request.Context(), actor, claims))
}
