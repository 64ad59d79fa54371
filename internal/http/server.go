// Package http wires the API router and runs the API and metrics servers.
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

	"github.com/allisson/compvault/internal/config"
	cryptoHTTP "github.com/allisson/compvault/internal/crypto/http"
	"github.com/allisson/compvault/internal/database"
	"github.com/allisson/compvault/internal/metrics"
	recordsHTTP "github.com/allisson/compvault/internal/records/http"
	sessionHTTP "github.com/allisson/compvault/internal/session/http"
)

const readinessTimeout = 2 * time.Second

// Handlers groups the API handlers mounted under /v1.
type Handlers struct {
	Encryption *cryptoHTTP.EncryptionHandler
	Session    *sessionHTTP.SessionHandler
	Records    *recordsHTTP.RecordHandler
}

// Server is the API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	stopBackground context.CancelFunc
}

// NewServer creates the API server. db is used by the readiness probe and may be nil.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine. metricsProvider may be nil when metrics are disabled.
func (s *Server) SetupRouter(cfg *config.Config, handlers Handlers, metricsProvider *metrics.Provider) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopBackground = cancel
		v1.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	if handlers.Encryption != nil {
		crypto := v1.Group("/crypto")
		crypto.POST("/encrypt", handlers.Encryption.EncryptHandler)
		crypto.POST("/decrypt", handlers.Encryption.DecryptHandler)
		crypto.POST("/decrypt/batch", handlers.Encryption.BatchDecryptHandler)
		crypto.POST("/change-password", handlers.Encryption.ChangePasswordHandler)
		crypto.POST("/validate-password", handlers.Encryption.ValidatePasswordHandler)
	}

	if handlers.Session != nil {
		session := v1.Group("/session")
		session.POST("/unlock", handlers.Session.UnlockHandler)
		session.POST("/lock", handlers.Session.LockHandler)
		session.GET("", handlers.Session.StatusHandler)
	}

	if handlers.Records != nil {
		records := v1.Group("/records")
		records.POST("", handlers.Records.CreateHandler)
		records.GET("", handlers.Records.ListHandler)
		records.POST("/audit", handlers.Records.AuditHandler)
		records.POST("/change-password", handlers.Records.ChangePasswordHandler)
		records.GET("/:id", handlers.Records.GetHandler)
		records.DELETE("/:id", handlers.Records.DeleteHandler)
	}

	s.router = router
}

// GetHandler returns the router. Nil until SetupRouter runs.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops background middleware work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.stopBackground != nil {
		s.stopBackground()
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	if err := database.Ping(c.Request.Context(), s.db, readinessTimeout); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
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
