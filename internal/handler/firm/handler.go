package firm

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/service/firm"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

// Handler serves firm management. Firms sit outside the policy registry;
// the admin route tier is their only guard.
type Handler struct {
	svc firm.FirmServicer
}

func NewHandler(svc firm.FirmServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(t handler.Tiers) {
	firms := t.Admin.Group("/firm")
	{
		firms.POST("/create", h.Create)
		firms.POST("/search", h.Search)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, err := principal.FromContext(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	req, err := handler.BindJSON[model.FirmRequest]()(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Search(c *gin.Context) {
	actor, err := principal.FromContext(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	req, err := handler.BindSearch[model.FirmSearchRequest]()(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page, err := h.svc.Search(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}
