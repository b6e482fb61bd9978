//nolint:revive // Package name 'api' is intentionally generic for the HTTP API layer
package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	apimw "github.com/profilarr/profilarr/internal/api/middleware"
	"github.com/profilarr/profilarr/internal/api/ratelimit"
	"github.com/profilarr/profilarr/internal/arr"
	"github.com/profilarr/profilarr/internal/arrconfig"
	"github.com/profilarr/profilarr/internal/arrsync"
	"github.com/profilarr/profilarr/internal/auth"
	"github.com/profilarr/profilarr/internal/config"
	"github.com/profilarr/profilarr/internal/logger"
	"github.com/profilarr/profilarr/internal/progress"
	"github.com/profilarr/profilarr/internal/scheduler"
	"github.com/profilarr/profilarr/internal/settings"
	"github.com/profilarr/profilarr/internal/sources"
	"github.com/profilarr/profilarr/internal/websocket"
)

// Server handles HTTP requests for the Profilarr API.
type Server struct {
	echo      *echo.Echo
	db        *sql.DB
	hub       *websocket.Hub
	logger    zerolog.Logger
	appLogger *logger.Logger
	cfg       *config.Config
	startTime time.Time

	// Services
	cache            *sources.Cache
	settingsService  *settings.Service
	arrConfigService *arrconfig.Service
	syncService      *arrsync.Service
	dispatcher       *arrsync.Dispatcher
	authService      *auth.Service
	authLimiter      *ratelimit.AuthLimiter
	progressManager  *progress.Manager
	scheduler        *scheduler.Scheduler
}

// NewServer creates a new API server instance.
func NewServer(
	db *sql.DB,
	hub *websocket.Hub,
	cache *sources.Cache,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	appLogger *logger.Logger,
) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log := appLogger.Logger

	s := &Server{
		echo:      e,
		db:        db,
		hub:       hub,
		logger:    log,
		appLogger: appLogger,
		cfg:       cfg,
		cache:     cache,
		scheduler: sched,
		startTime: time.Now(),
	}

	// Initialize services
	s.progressManager = progress.NewManager(hub, log)
	s.settingsService = settings.NewService(db, log)
	s.arrConfigService = arrconfig.NewService(db, log)
	s.syncService = arrsync.NewService(cache, s.settingsService, s.progressManager, log)
	s.dispatcher = arrsync.NewDispatcher(s.syncService, s.arrConfigService, sched, log)

	authService, err := auth.NewService(db, cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	s.authService = authService

	s.authLimiter = ratelimit.NewAuthLimiter()
	s.authLimiter.StartCleanup(5 * time.Minute)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Dispatcher exposes the scheduled-sync dispatcher for startup reconciliation.
func (s *Server) Dispatcher() *arrsync.Dispatcher {
	return s.dispatcher
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// CORS
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Api-Key"},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// WebSocket endpoint for progress and log streaming
	s.echo.GET("/ws", s.hub.HandleWebSocket)

	// API v1 group
	api := s.echo.Group("/api/v1")
	api.Use(s.requireAuth)

	// System routes
	api.GET("/status", s.getStatus)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.login, s.authLimiter.Middleware())
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/status", s.authStatus)
	authGroup.POST("/setup", s.setupCredentials)
	authGroup.POST("/apikey/rotate", s.rotateAPIKey)

	// Arr configuration routes
	arrHandlers := arrconfig.NewHandlers(s.arrConfigService)
	arrHandlers.SetConnectionTester(func(ctx context.Context, cfg *arrconfig.Config) error {
		client := arr.NewClient(arr.Config{BaseURL: cfg.ArrServer, APIKey: cfg.APIKey})
		_, err := client.SystemStatus(ctx)
		return err
	})
	arrHandlers.SetOnChange(func(ctx context.Context) {
		if err := s.dispatcher.Reconcile(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Failed to reconcile sync schedules")
		}
	})
	arrHandlers.RegisterRoutes(api.Group("/arr"))

	// Sync routes
	syncHandlers := arrsync.NewHandlers(s.syncService, s.arrConfigService)
	syncHandlers.RegisterRoutes(api.Group("/import"))

	// Source file routes
	fileHandlers := sources.NewHandlers(s.cache)
	fileHandlers.RegisterRoutes(api.Group("/files"))

	// Settings routes
	settingsHandlers := settings.NewHandlers(s.settingsService)
	settingsHandlers.RegisterRoutes(api.Group("/settings"))

	// Scheduler task routes
	taskHandlers := NewTaskHandlers(s.scheduler)
	taskHandlers.RegisterRoutes(api.Group("/scheduler/tasks"))

	// Activity routes
	api.GET("/activities", s.getActivities)

	// Log routes
	logsHandlers := NewLogsHandlers(s.appLogger)
	logsHandlers.RegisterRoutes(api.Group("/logs"))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance (for serving static files).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// --- Handler implementations ---

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	ctx := c.Request().Context()

	configs, _ := s.arrConfigService.List(ctx)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":    config.Version,
		"startTime":  s.startTime.Format(time.RFC3339),
		"arrConfigs": len(configs),
		"formats":    len(s.cache.Names(sources.CategoryCustomFormat)),
		"profiles":   len(s.cache.Names(sources.CategoryProfile)),
		"patterns":   len(s.cache.Names(sources.CategoryRegexPattern)),
	})
}

func (s *Server) getActivities(c echo.Context) error {
	return c.JSON(http.StatusOK, s.progressManager.Activities())
}
