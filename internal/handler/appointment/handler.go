package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/service/appointment"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

type Handler struct {
	svc      appointment.AppointmentServicer
	enforcer *policy.Enforcer
}

func NewHandler(svc appointment.AppointmentServicer, enforcer *policy.Enforcer) *Handler {
	return &Handler{svc: svc, enforcer: enforcer}
}

func (h *Handler) RegisterRoutes(t handler.Tiers) {
	appointments := t.Employee.Group("/appointment")
	{
		appointments.POST("/create", handler.WithPolicy(h.enforcer, policy.EntityAppointment, policy.OpCreate, handler.BindJSON[model.AppointmentRequest](), h.Create))
		appointments.POST("/search", handler.WithPolicy(h.enforcer, policy.EntityAppointment, policy.OpRead, handler.BindSearch[model.AppointmentSearchRequest](), h.Search))
		appointments.GET("/:id", handler.WithPolicy(h.enforcer, policy.EntityAppointment, policy.OpRead, handler.BindByID(byID), h.Get))
		appointments.PUT("", handler.WithPolicy(h.enforcer, policy.EntityAppointment, policy.OpUpdate, handler.BindJSON[model.AppointmentRequest](), h.Update))
		appointments.DELETE("", handler.WithPolicy(h.enforcer, policy.EntityAppointment, policy.OpDelete, handler.BindQueryID, h.Delete))
	}
}

func byID(req *model.AppointmentSearchRequest, id int64) {
	req.ID = filter.Some(id)
}

func (h *Handler) Create(c *gin.Context, actor principal.Principal, req *model.AppointmentRequest) {
	created, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Search(c *gin.Context, actor principal.Principal, req *model.AppointmentSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Get(c *gin.Context, actor principal.Principal, req *model.AppointmentSearchRequest) {
	page, err := h.svc.Search(c.Request.Context(), actor, req)
	handler.RespondWithFirst(c, page.Content, err, "Appointment")
}

func (h *Handler) Update(c *gin.Context, actor principal.Principal, req *model.AppointmentRequest) {
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
