// Package main runs the event platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/accounts"
	"github.com/gatherly/backend/internal/attendees"
	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/identity"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/pkg/database"
	"github.com/gatherly/backend/pkg/redis"
	"github.com/gatherly/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var verifier authflow.TokenVerifier
	providerVerifier, err := identity.NewProviderVerifier(ctx, cfg.Auth.IssuerURL)
	if err != nil {
		logger.Fatal("identity provider", zap.Error(err))
	}
	verifier = providerVerifier
	if cfg.Auth.CacheTTLSec > 0 {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		ttl := time.Duration(cfg.Auth.CacheTTLSec) * time.Second
		verifier = identity.NewCachedVerifier(providerVerifier, rdb.Client, ttl, logger)
		logger.Info("token verification cache enabled", zap.Duration("ttl", ttl))
	}

	accountRepo := accounts.NewRepository(pool)
	accountHandler := accounts.NewHandler(accountRepo)

	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo)

	attendeeRepo := attendees.NewRepository(pool)
	attendeeHandler := attendees.NewHandler(attendeeRepo, logger)

	eventRepo := events.NewRepository(pool)
	reserver := events.NewReserver(eventRepo, attendeeRepo, eventRepo)
	eventHandler := events.NewHandler(eventRepo, reserver, logger)

	authenticate := middleware.Authenticate(verifier, accountRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public reads.
	router.GET("/accounts/:id", accountHandler.GetByID)
	router.GET("/organizations/:id", orgHandler.GetByID)
	router.GET("/organizations/:id/events", eventHandler.ListByOrganization)
	router.GET("/events/:id", eventHandler.GetByID)
	router.GET("/attendees/:id", attendeeHandler.GetByID)

	// Authenticated (credential verified, account resolved).
	api := router.Group("")
	api.Use(authenticate)
	{
		api.GET("/accounts/me", accountHandler.Me)

		api.POST("/organizations", orgHandler.Create)
		api.GET("/organizations/:id/members",
			middleware.RequireOrgRole(authflow.OrgIDSource{Param: "id"}, orgRepo, logger, models.RoleOrganizer, models.RoleAdmin),
			orgHandler.ListMembers)
		api.POST("/organizations/:id/members",
			middleware.RequireOrgRole(authflow.OrgIDSource{Param: "id"}, orgRepo, logger, models.RoleAdmin),
			orgHandler.AddMember)

		api.POST("/attendees", attendeeHandler.Create)
		api.PUT("/attendees/:id", attendeeHandler.Update)
		api.DELETE("/attendees/:id", attendeeHandler.Delete)

		api.POST("/events",
			middleware.RequireOrgRole(authflow.OrgIDSource{Body: "organization_id"}, orgRepo, logger, models.RoleOrganizer, models.RoleAdmin),
			eventHandler.Create)
		api.PUT("/events/:id",
			events.RequireEventOrgRole(eventRepo, orgRepo, logger, models.RoleOrganizer, models.RoleAdmin),
			eventHandler.Update)
		api.DELETE("/events/:id",
			events.RequireEventOrgRole(eventRepo, orgRepo, logger, models.RoleOrganizer, models.RoleAdmin),
			eventHandler.Delete)
		api.POST("/events/:id/rsvp", eventHandler.RSVP)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
