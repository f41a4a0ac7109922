package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/handler"
	"github.com/jwalitptl/chronosync/internal/handler/auth"
	"github.com/jwalitptl/chronosync/internal/handler/health"
	"github.com/jwalitptl/chronosync/internal/handler/prometheus"
	"github.com/jwalitptl/chronosync/internal/middleware"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/pkg/validator"
)

// Handler registers routes on the authenticated tiers.
type Handler interface {
	RegisterRoutes(handler.Tiers)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	limiter  *middleware.RateLimiter
	authH    *auth.Handler
	healthH  *health.Handler
	metricsH *prometheus.Handler
	handlers []Handler
}

type Config struct {
	Mode string
}

func NewRouter(
	config Config,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	authH *auth.Handler,
	healthH *health.Handler,
	metricsH *prometheus.Handler,
	handlers ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	validator.Setup()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metricsH.Middleware(),
		middleware.ErrorHandler(),
	)
	engine.NoRoute(middleware.NoRoute)

	return &Router{
		engine:   engine,
		auth:     authMiddleware,
		limiter:  limiter,
		authH:    authH,
		healthH:  healthH,
		metricsH: metricsH,
		handlers: handlers,
	}
}

// Setup registers the whitelisted routes and the three role tiers under
// /api/v1.
func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.metricsH.Handler())

	api := r.engine.Group("/api/v1")
	r.authH.RegisterPublicRoutes(api, r.limiter.RateLimit())

	employee := api.Group("", r.auth.Authenticate())
	tiers := handler.Tiers{
		Employee: employee,
		Manager:  employee.Group("", middleware.RequireRole(model.RoleManager)),
		Admin:    employee.Group("", middleware.RequireRole(model.RoleAdministrator)),
	}

	r.authH.RegisterRoutes(tiers)
	for _, h := range r.handlers {
		h.RegisterRoutes(tiers)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
