package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/pkg/config"
	"github.com/kiyo9w/Imacall-backend/pkg/di"
	"github.com/kiyo9w/Imacall-backend/pkg/health"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"
	"github.com/kiyo9w/Imacall-backend/pkg/router"
	"github.com/kiyo9w/Imacall-backend/shared/observability"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", os.Getenv("APP_VERSION"))

	// Observability: stdout tracing plus the Prometheus meter provider
	// backing /metrics
	shutdownTracing := observability.SetupTracing("imacall-backend")
	defer shutdownTracing()
	observability.SetupPrometheusMetrics()

	// Initialize database
	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(
		&models.User{},
		&models.Character{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Composite index covering the conversation message timeline
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at)").Error; err != nil {
		log.LogError(err, "Failed to create message index", "index", "idx_messages_conversation_created")
	}

	// Initialize dependency injection container
	ctx := context.Background()
	container, err := di.New(ctx, db, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	// Background health checks
	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterDatabaseCheck(func() error {
		return config.TestConnection(db)
	})
	if container.Redis != nil {
		checker.RegisterRedisCheck(container.Redis.Ping)
	}
	checker.RegisterProviderCheck(container.Registry.Available)
	checker.Start()

	// Initialize and setup router
	r := router.New(container, checker)
	r.SetupRoutes()

	// Create HTTP server
	// No read/write timeouts on the server itself: the WebSocket chat
	// endpoint holds connections open indefinitely
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	// Start the server in a goroutine
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
