package client

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/service/client"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

type Handler struct {
	svc      client.ClientServicer
	enforcer *policy.Enforcer
}

func NewHandler(svc client.ClientServicer, enforcer *policy.Enforcer) *Handler {
	return &Handler{svc: svc, enforcer: enforcer}
}

func (h *Handler) RegisterRoutes(t handler.Tiers) {
	clients := t.Employee.Group("/client")
	{
		clients.POST("/create", handler.WithPolicy(h.enforcer, policy.EntityClient, policy.OpCreate, handler.BindJSON[model.ClientRequest](), h.Create))
		clients.POST("/search", handler.WithPolicy(h.enforcer, policy.EntityClient, policy.OpRead, handler.BindSearch[model.ClientSearchRequest](), h.Search))
		clients.GET("/:id", handler.WithPolicy(h.enforcer, policy.EntityClient, policy.OpRead, handler.BindByID(byID), h.Get))
		clients.PUT("", handler.WithPolicy(h.enforcer, policy.EntityClient, policy.OpUpdate, handler.BindJSON[model.ClientRequest](), h.Update))
		clients.DELETE("", handler.WithPolicy(h.enforcer, policy.EntityClient, policy.OpDelete, handler.BindQueryID, h.Delete))
	}
}

func byID(req *model.ClientSearchRequest, id int64) {
	req.ID = filter.Some(id)
}

func (h *Handler) Create(c *gin.Context, actor principal.Principal, req *model.ClientRequest) {
	created, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Search(c *gin.Context, actor principal.Principal, req *model.ClientSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Get(c *gin.Context, actor principal.Principal, req *model.ClientSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	handler.RespondWithFirst(c, page.Content, err, "Client")
}

func (h *Handler) Update(c *gin.Context, actor principal.Principal, req *model.ClientRequest) {
	updated, err := h.svc.Update(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) Delete(c *gin.Context, actor principal.Principal, id int64) {
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithOK(c)
}
