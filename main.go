package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/videoflow/videoflow-be/internal/api"
	"github.com/videoflow/videoflow-be/internal/auth"
	"github.com/videoflow/videoflow-be/internal/config"
	"github.com/videoflow/videoflow-be/internal/database"
	"github.com/videoflow/videoflow-be/internal/logger"
	"github.com/videoflow/videoflow-be/internal/monitoring"
	"github.com/videoflow/videoflow-be/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	authManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db)
	videoService := services.NewVideoService(db)

	// Set up and run the background stats reporter
	statsReporter, err := monitoring.NewStatsReporter(videoService, cfg.StatsSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize stats reporter")
	}
	go statsReporter.Run()

	// Set up router
	router := api.NewRouter(authManager, userService, videoService, cfg.CORSOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statsReporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
