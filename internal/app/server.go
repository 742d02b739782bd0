// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/admin"
	"bookmarked_backend/internal/auth"
	"bookmarked_backend/internal/bookshelf"
	"bookmarked_backend/internal/catalog"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/jobs"
	"bookmarked_backend/internal/middleware"
	"bookmarked_backend/internal/platform/metrics"
	"bookmarked_backend/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	statsJob *jobs.StatsJob
}

// Handlers groups the route handlers mounted by NewServer.
type Handlers struct {
	Auth      *auth.Handler
	Bookshelf *bookshelf.Handler
	Admin     *admin.Handler
	Catalog   *catalog.Handler
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	issuer session.Issuer,
	resolver middleware.PrincipalResolver,
	m *metrics.Metrics,
	statsJob *jobs.StatsJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := NewRouter(cfg, logger, handlers, issuer, resolver, m)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		statsJob:   statsJob,
	}, nil
}

// NewRouter builds the gin engine with global middleware and every route.
// m may be nil, in which case no metrics are recorded or exposed.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	issuer session.Issuer,
	resolver middleware.PrincipalResolver,
	m *metrics.Metrics,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// Credentialed CORS: the frontend sends the session cookie cross-origin.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	if m != nil {
		router.Use(m.Middleware())
	}
	router.Use(middleware.Identify(issuer, resolver, logger.Named("Identify")))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Bookmarked API is healthy!"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	handlers.Auth.RegisterRoutes(&router.RouterGroup)

	api := router.Group("/api")
	accountMW := middleware.RequireAccount()
	handlers.Catalog.RegisterRoutes(api)
	handlers.Bookshelf.RegisterRoutes(api, accountMW)
	handlers.Admin.RegisterRoutes(api, accountMW)

	return router
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.statsJob != nil {
		if err := s.statsJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start stats job", zap.Error(err))
		}
	} else {
		s.logger.Info("Stats job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.statsJob != nil {
		s.statsJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// AutoMigrate creates or updates the tables this service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&account.Account{}, &bookshelf.Entry{})
}
