package user

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/service/user"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

type Handler struct {
	svc      user.UserServicer
	enforcer *policy.Enforcer
}

func NewHandler(svc user.UserServicer, enforcer *policy.Enforcer) *Handler {
	return &Handler{svc: svc, enforcer: enforcer}
}

func (h *Handler) RegisterRoutes(t handler.Tiers) {
	users := t.Manager.Group("/user")
	{
		users.POST("/create", handler.WithPolicy(h.enforcer, policy.EntityUser, policy.OpCreate, handler.BindJSON[model.UserRequest](), h.Create))
		users.POST("/search", handler.WithPolicy(h.enforcer, policy.EntityUser, policy.OpRead, handler.BindSearch[model.UserSearchRequest](), h.Search))
		users.GET("/:id", handler.WithPolicy(h.enforcer, policy.EntityUser, policy.OpRead, handler.BindByID(byID), h.Get))
		users.PUT("", handler.WithPolicy(h.enforcer, policy.EntityUser, policy.OpUpdate, handler.BindJSON[model.UserRequest](), h.Update))
		users.DELETE("", handler.WithPolicy(h.enforcer, policy.EntityUser, policy.OpDelete, handler.BindQueryID, h.Delete))
	}
}

func byID(req *model.UserSearchRequest, id int64) {
	req.ID = filter.Some(id)
}

func (h *Handler) Create(c *gin.Context, actor principal.Principal, req *model.UserRequest) {
	resp, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) Search(c *gin.Context, actor principal.Principal, req *model.UserSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Get(c *gin.Context, actor principal.Principal, req *model.UserSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	handler.RespondWithFirst(c, page.Content, err, "User")
}

func (h *Handler) Update(c *gin.Context, actor principal.Principal, req *model.UserRequest) {
	resp, err := h.svc.Update(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Delete(c *gin.Context, actor principal.Principal, id int64) {
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithOK(c)
}
