package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tripdirections/service-directions/internal/application"
	"github.com/tripdirections/service-directions/internal/config"
	"github.com/tripdirections/service-directions/internal/events"
	"github.com/tripdirections/service-directions/internal/export"
	"github.com/tripdirections/service-directions/internal/handler"
	"github.com/tripdirections/service-directions/internal/repository"
	"github.com/tripdirections/service-directions/pkg/logger"
	"github.com/tripdirections/service-directions/pkg/middleware"
	"go.uber.org/zap"
)

const serviceName = "service-directions"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("export_dir", cfg.Export.Dir),
		zap.Duration("provider_timeout", cfg.Provider.Timeout),
	)

	// Initialize the maps client, shared by every request
	mapsClient, err := repository.NewMapsClient(cfg.Provider.APIKey, cfg.Provider.BaseURL)
	if err != nil {
		log.Fatal("failed to create maps client", zap.Error(err))
	}
	mapsRepo := repository.NewMapsRepository(mapsClient, cfg.Provider.Timeout, log)

	// Initialize export writer
	writer, err := export.NewWriter(cfg.Export.Dir, cfg.Export.KeepFiles, log)
	if err != nil {
		log.Fatal("failed to initialize export writer", zap.Error(err))
	}

	// Initialize Kafka producer
	publisher := events.NewPublisher(cfg.Kafka.Brokers, log)
	defer func() { _ = publisher.Close() }()

	// Initialize application service
	directionsService := application.NewDirectionsService(
		mapsRepo,
		mapsRepo,
		writer,
		publisher,
		cfg.Kafka.ExportTopic,
		log,
	)

	// Initialize HTTP handlers
	directionsHandler := handler.NewDirectionsHandler(directionsService)
	healthHandler := handler.NewHealthHandler(serviceName, writer.Dir())

	// Setup Gin router
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.UseRawPath = true

	// Apply global middleware; the logger wraps recovery so panics are logged
	// with their final status.
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register routes
	healthHandler.RegisterRoutes(router)
	directionsHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.Provider.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
