package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/chronosync/internal/config"
	appointmentHandler "github.com/jwalitptl/chronosync/internal/handler/appointment"
	appointmentTypeHandler "github.com/jwalitptl/chronosync/internal/handler/appointmenttype"
	authHandler "github.com/jwalitptl/chronosync/internal/handler/auth"
	clientHandler "github.com/jwalitptl/chronosync/internal/handler/client"
	firmHandler "github.com/jwalitptl/chronosync/internal/handler/firm"
	"github.com/jwalitptl/chronosync/internal/handler/health"
	"github.com/jwalitptl/chronosync/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/chronosync/internal/handler/user"
	"github.com/jwalitptl/chronosync/internal/middleware"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/repository/postgres"
	redisstore "github.com/jwalitptl/chronosync/internal/repository/redis"
	"github.com/jwalitptl/chronosync/internal/router"
	appointmentService "github.com/jwalitptl/chronosync/internal/service/appointment"
	appointmentTypeService "github.com/jwalitptl/chronosync/internal/service/appointmenttype"
	authService "github.com/jwalitptl/chronosync/internal/service/auth"
	clientService "github.com/jwalitptl/chronosync/internal/service/client"
	firmService "github.com/jwalitptl/chronosync/internal/service/firm"
	userService "github.com/jwalitptl/chronosync/internal/service/user"
	"github.com/jwalitptl/chronosync/pkg/auth"
	"github.com/jwalitptl/chronosync/pkg/logger"
	"github.com/jwalitptl/chronosync/pkg/metrics"
	"github.com/jwalitptl/chronosync/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Format == "console",
		Service: "chronosync",
	}).SetGlobal()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	registry := promclient.NewRegistry()
	m := metrics.NewMetrics(cfg.Metrics.Namespace, registry)

	// Initialize repositories
	repos := postgres.NewRepositories(db, m)
	checks := map[string]health.Check{
		"database": db.PingContext,
	}

	tokens := repos.Tokens
	if cfg.Security.TokenStore == "redis" {
		client, err := redisstore.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer client.Close()

		tokens = redisstore.NewTokenStore(client, cfg.Redis.KeyPrefix, m)
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}

	// Policies
	policies, err := policy.NewDefaultRegistry(policy.Deps{
		Users:        repos.Users,
		Appointments: repos.Appointments,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("policy registry is incomplete")
	}
	enforcer := policy.NewEnforcer(policies, m)

	// Initialize services
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	principals := principal.NewAccessor(repos.Users, cfg.Security.PrincipalTTL)

	authSvc := authService.NewService(repos.Users, tokens, jwtSvc, hasher, m)
	userSvc := userService.NewService(repos.Users, tokens, hasher, principals, cfg.Security.MaxUsernameTry)
	clientSvc := clientService.NewService(repos.Clients)
	appointmentTypeSvc := appointmentTypeService.NewService(repos.AppointmentTypes)
	appointmentSvc := appointmentService.NewService(repos.Appointments, repos.Clients, repos.AppointmentTypes, repos.Users, repos.Tx)
	firmSvc := firmService.NewService(repos.Firms, repos.Users, repos.Tx, hasher)

	if err := bootstrap(ctx, firmSvc, cfg.Bootstrap); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap administrator")
	}

	// Setup router
	r := router.NewRouter(
		router.Config{Mode: gin.ReleaseMode},
		middleware.NewAuthMiddleware(authSvc, principals),
		middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.LoginRPS),
			Burst: cfg.RateLimit.LoginBurst,
		}),
		authHandler.NewHandler(authSvc),
		health.NewHandler(checks),
		prometheus.New(cfg.Metrics.Namespace, registry),
		userHandler.NewHandler(userSvc, enforcer),
		clientHandler.NewHandler(clientSvc, enforcer),
		appointmentTypeHandler.NewHandler(appointmentTypeSvc, enforcer),
		appointmentHandler.NewHandler(appointmentSvc, enforcer),
		firmHandler.NewHandler(firmSvc),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func bootstrap(ctx context.Context, firms *firmService.Service, cfg config.BootstrapConfig) error {
	created, err := firms.Bootstrap(ctx, firmService.Administrator{
		FirmName: cfg.FirmName,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	if created {
		log.Warn().Str("username", cfg.AdminUsername).Msg("created initial administrator; change its password")
	}
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Second
	}
	return d
}
