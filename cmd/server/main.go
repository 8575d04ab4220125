package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bordersense/surveillance/internal/config"
	"bordersense/surveillance/internal/detection"
	"bordersense/surveillance/internal/events"
	"bordersense/surveillance/internal/feedback"
	"bordersense/surveillance/internal/handlers"
	"bordersense/surveillance/internal/metrics"
	"bordersense/surveillance/internal/models"
	"bordersense/surveillance/internal/queue"
	"bordersense/surveillance/internal/repositories"
	"bordersense/surveillance/internal/retraining"
	"bordersense/surveillance/internal/routers"
	"bordersense/surveillance/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, alertHandler *handlers.AlertHandler, detectionHandler *handlers.DetectionHandler, feedbackHandler *handlers.FeedbackHandler, modelHandler *handlers.ModelHandler, eventsHandler *handlers.EventsHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.EventRoutes(router, eventsHandler)
	routers.APIRoutes(router, alertHandler, detectionHandler, feedbackHandler, modelHandler)
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.AIModel{}, &models.Alert{}, &models.AlertComment{}, &models.Feedback{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	modelRepo := &repositories.ModelRepository{DB: db}
	alertRepo := &repositories.AlertRepository{DB: db}
	feedbackRepo := &repositories.FeedbackRepository{DB: db}

	// Event fan-out to dashboard subscribers.
	hub := events.NewHub()
	broadcaster := events.NewBroadcaster(hub, logger)

	// Retraining enqueue side channel; optional.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logger.Info("Retraining queue enabled", zap.String("addr", cfg.RedisAddr))
	}
	retrainingQueue := queue.NewRetrainingQueue(rdb, logger)

	// Detection pipeline with the model resolver cache.
	cache := detection.NewModelCache(cfg.ModelCacheTTL, nil)
	resolver := detection.NewResolver(modelRepo, cache)
	pipeline := detection.NewPipeline(resolver, alertRepo, broadcaster, cfg.DefaultConfidenceThreshold, logger)

	intake := feedback.NewIntake(feedbackRepo, alertRepo, modelRepo, retrainingQueue, cfg.FeedbackThreshold, logger)

	controller := retraining.NewController(
		feedbackRepo, alertRepo, modelRepo,
		retraining.SimulatedTrainer{},
		resolver, broadcaster, retrainingQueue,
		retraining.Config{
			Schedule:          cfg.RetrainSchedule,
			BatchSize:         cfg.BatchSize,
			MinGroupSize:      cfg.MinGroupSize,
			FeedbackThreshold: cfg.FeedbackThreshold,
		},
		nil, logger,
	)
	if err := controller.Start(); err != nil {
		logger.Fatal("Failed to start retraining controller", zap.Error(err))
	}

	alertHandler := handlers.NewAlertHandler(alertRepo, broadcaster)
	detectionHandler := handlers.NewDetectionHandler(pipeline)
	feedbackHandler := handlers.NewFeedbackHandler(intake)
	modelHandler := handlers.NewModelHandler(modelRepo, resolver, controller)
	eventsHandler := handlers.NewEventsHandler(hub)
	healthHandler := handlers.NewHealthHandler(db)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware())

	registerRoutes(router, alertHandler, detectionHandler, feedbackHandler, modelHandler, eventsHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Surveillance service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Surveillance service shutting down...")

	// Stop the retraining controller; an in-flight batch cycle completes
	// before this returns, so no model is left in Training.
	controller.Stop()
	broadcaster.Close()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Surveillance service exited")
}
