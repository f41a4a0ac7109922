package appointmenttype

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/service/appointmenttype"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

type Handler struct {
	svc      appointmenttype.AppointmentTypeServicer
	enforcer *policy.Enforcer
}

func NewHandler(svc appointmenttype.AppointmentTypeServicer, enforcer *policy.Enforcer) *Handler {
	return &Handler{svc: svc, enforcer: enforcer}
}

// RegisterRoutes exposes search to every role. Writes need a manager.
func (h *Handler) RegisterRoutes(t handler.Tiers) {
	read := t.Employee.Group("/appointment-type")
	{
		read.POST("/search", handler.WithPolicy(h.enforcer, policy.EntityAppointmentType, policy.OpRead, handler.BindSearch[model.AppointmentTypeSearchRequest](), h.Search))
		read.GET("/:id", handler.WithPolicy(h.enforcer, policy.EntityAppointmentType, policy.OpRead, handler.BindByID(byID), h.Get))
	}

	write := t.Manager.Group("/appointment-type")
	{
		write.POST("/create", handler.WithPolicy(h.enforcer, policy.EntityAppointmentType, policy.OpCreate, handler.BindJSON[model.AppointmentTypeRequest](), h.Create))
		write.PUT("", handler.WithPolicy(h.enforcer, policy.EntityAppointmentType, policy.OpUpdate, handler.BindJSON[model.AppointmentTypeRequest](), h.Update))
		write.DELETE("", handler.WithPolicy(h.enforcer, policy.EntityAppointmentType, policy.OpDelete, handler.BindQueryID, h.Delete))
	}
}

func byID(req *model.AppointmentTypeSearchRequest, id int64) {
	req.ID = filter.Some(id)
}

func (h *Handler) Create(c *gin.Context, actor principal.Principal, req *model.AppointmentTypeRequest) {
	created, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Search(c *gin.Context, actor principal.Principal, req *model.AppointmentTypeSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Get(c *gin.Context, actor principal.Principal, req *model.AppointmentTypeSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	handler.RespondWithFirst(c, page.Content, err, "Appointment type")
}

func (h *Handler) Update(c *gin.Context, actor principal.Principal, req *model.AppointmentTypeRequest) {
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
