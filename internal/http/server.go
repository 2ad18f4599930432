// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/xambitlan/disclosure/internal/audit/http"
	"github.com/xambitlan/disclosure/internal/config"
	contactHTTP "github.com/xambitlan/disclosure/internal/contact/http"
	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
	identityService "github.com/xambitlan/disclosure/internal/identity/service"
	identityUseCase "github.com/xambitlan/disclosure/internal/identity/usecase"
	"github.com/xambitlan/disclosure/internal/metrics"
	"github.com/xambitlan/disclosure/internal/ratelimit"
	revealHTTP "github.com/xambitlan/disclosure/internal/reveal/http"
)

// Server represents the HTTP server
type Server struct {
	db       *sql.DB
	inMemory bool
	server   *http.Server
	router   *gin.Engine
	logger   *slog.Logger
}

// RouterDeps groups what SetupRouter wires into the API routes.
// A nil limiter disables that limit.
type RouterDeps struct {
	IdentityHandler *identityHTTP.IdentityHandler
	ContactHandler  *contactHTTP.ContactHandler
	RevealHandler   *revealHTTP.RevealHandler
	AuditHandler    *auditHTTP.AuditHandler
	IdentityUseCase identityUseCase.IdentityUseCase
	TokenService    identityService.TokenService
	MetricsProvider *metrics.Provider

	// RequestLimiter is keyed by identity on authenticated routes.
	RequestLimiter ratelimit.Limiter
	// IPLimiter is keyed by client IP on the identity endpoints.
	IPLimiter ratelimit.Limiter
	// RevealLimiter is keyed by identity on reveal request creation.
	RevealLimiter ratelimit.Limiter
}

// NewServer creates a new HTTP server. db may be nil for the in-memory driver.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with middleware and all API routes.
func (s *Server) SetupRouter(cfg *config.Config, deps RouterDeps) {
	s.inMemory = cfg.DBDriver == "memory"

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	identity := v1.Group("/identity")
	if deps.IPLimiter != nil {
		identity.Use(identityHTTP.IPRateLimitMiddleware(deps.IPLimiter, s.logger))
	}
	identity.POST("/challenges", deps.IdentityHandler.IssueChallengeHandler)
	identity.POST("/sessions", deps.IdentityHandler.EstablishSessionHandler)

	authenticated := v1.Group("")
	authenticated.Use(identityHTTP.AuthenticationMiddleware(deps.IdentityUseCase, deps.TokenService, s.logger))
	if deps.RequestLimiter != nil {
		authenticated.Use(identityHTTP.RateLimitMiddleware(deps.RequestLimiter, s.logger))
	}

	authenticated.PUT("/contact", deps.ContactHandler.SetContactHandler)
	authenticated.GET("/providers/:providerId/contact-hash", deps.ContactHandler.GetContactHashHandler)

	createHandlers := []gin.HandlerFunc{deps.RevealHandler.CreateHandler}
	if deps.RevealLimiter != nil {
		createHandlers = append(
			[]gin.HandlerFunc{identityHTTP.RateLimitMiddleware(deps.RevealLimiter, s.logger)},
			createHandlers...,
		)
	}
	authenticated.POST("/services/:serviceId/reveal-requests", createHandlers...)

	reveal := authenticated.Group("/reveal-requests")
	reveal.GET("", deps.RevealHandler.ListHandler)
	reveal.GET("/:id", deps.RevealHandler.GetHandler)
	reveal.POST("/:id/consent", deps.RevealHandler.ConsentHandler)
	reveal.GET("/:id/contact", deps.RevealHandler.ContactHandler)

	audit := authenticated.Group("/audit")
	audit.GET("/:resourceType/:resourceId", deps.AuditHandler.ListHandler)
	audit.GET("/:resourceType/:resourceId/verify", deps.AuditHandler.VerifyHandler)

	s.router = router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// GetHandler returns the configured router, or nil before SetupRouter.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready once the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.inMemory {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": gin.H{"database": "memory"},
		})
		return
	}

	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
