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
	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/api"
	"github.com/burrowhq/burrow/internal/cache"
	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/gateway/moderation"
	"github.com/burrowhq/burrow/internal/gateway/storage"
	"github.com/burrowhq/burrow/internal/realtime"
	"github.com/burrowhq/burrow/pkg/config"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Burrow API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database and migrate the schema
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis cache (optional; a nil cache disables caching)
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	// Realtime hub
	hub := realtime.NewHub()
	go hub.Run()

	// External gateways
	moderationClient := moderation.New(&cfg.Moderation)
	storageClient := storage.New(&cfg.Storage)

	// Core services
	repo := db.NewRepository(database.DB)
	policy := core.NewModerationPolicy(moderationClient, &cfg.Moderation)
	dispatcher := core.NewDispatcher(
		db.NewNotificationRepository(repo),
		db.NewReportRepository(repo),
		hub,
	)

	services := api.Services{
		Users:         core.NewUserService(repo, storageClient),
		Communities:   core.NewCommunityService(repo),
		Posts:         core.NewPostService(repo, policy, storageClient, redisCache),
		Comments:      core.NewCommentService(repo, policy),
		Votes:         core.NewVoteService(repo),
		Relationships: core.NewRelationshipService(repo),
		Reports:       core.NewReportService(repo),
		Notifications: core.NewNotificationService(repo),
		Dispatcher:    dispatcher,
	}

	// Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	router := api.NewRouter(cfg, services, hub, database)
	router.SetupRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
