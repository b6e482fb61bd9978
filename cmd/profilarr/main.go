package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/profilarr/profilarr/internal/api"
	"github.com/profilarr/profilarr/internal/config"
	"github.com/profilarr/profilarr/internal/database"
	"github.com/profilarr/profilarr/internal/logger"
	"github.com/profilarr/profilarr/internal/scheduler"
	"github.com/profilarr/profilarr/internal/scheduler/tasks"
	"github.com/profilarr/profilarr/internal/sources"
	"github.com/profilarr/profilarr/internal/websocket"
)

// The hub is what feeds streamed log entries to connected clients.
var _ logger.Broadcaster = (*websocket.Hub)(nil)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		Path:            cfg.Logging.Path,
		EnableStreaming: true,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("Profilarr starting")

	// Database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// YAML source tree
	cache, err := sources.NewCache(cfg.Sources.Path, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Sources.Path).Msg("Failed to load source files")
	}

	// WebSocket hub, fed by the streaming logger
	hub := websocket.NewHub()
	go hub.Run()
	if b := log.Broadcaster(); b != nil {
		b.SetHub(hub)
	}

	// Scheduler
	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	// API server
	server, err := api.NewServer(db.Conn(), hub, cache, sched, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// Static tasks, then per-config sync schedules, then start ticking
	if err := tasks.RegisterSourcesReloadTask(sched, cache); err != nil {
		log.Error().Err(err).Msg("Failed to register sources reload task")
	}
	ctx := context.Background()
	if err := server.Dispatcher().Reconcile(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to reconcile sync schedules")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Str("address", cfg.Server.Address()).Msg("Profilarr started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop scheduler")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server")
	}

	log.Info().Msg("Profilarr stopped")
}
