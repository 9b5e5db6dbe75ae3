package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	prodapp "github.com/mrp/backend/internal/application/production"
	stockapp "github.com/mrp/backend/internal/application/stock"
	"github.com/mrp/backend/internal/infrastructure/config"
	"github.com/mrp/backend/internal/infrastructure/event"
	"github.com/mrp/backend/internal/infrastructure/logger"
	"github.com/mrp/backend/internal/infrastructure/notify"
	"github.com/mrp/backend/internal/infrastructure/persistence"
	"github.com/mrp/backend/internal/interfaces/http/handler"
	"github.com/mrp/backend/internal/interfaces/http/middleware"
	"github.com/mrp/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MRP Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	stockTxRepo := persistence.NewGormStockTransactionRepository(db.DB)
	batchRepo := persistence.NewGormProductionBatchRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)

	// Transaction scopes bind each ledger mutation to its transaction record
	stockTxScope := persistence.NewGormStockTransactionScope(db.DB)
	productionTxScope := persistence.NewGormProductionTransactionScope(db.DB)

	// Initialize application services
	materialService := stockapp.NewMaterialService(materialRepo, stockTxRepo, stockTxScope)
	batchService := prodapp.NewBatchService(batchRepo, historyRepo, materialRepo)
	commitService := prodapp.NewCommitService(batchRepo, productionTxScope, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	stockAlertHandler := stockapp.NewStockBelowThresholdHandler(log)
	batchStatusHandler := prodapp.NewBatchStatusChangedHandler(log)

	// Redis-backed notification channel for floor displays and stock alerts
	if cfg.Notify.Enabled {
		notifier, err := notify.NewRedisNotifier(notify.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Notify.Channel,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis notifier", zap.Error(err))
		}
		defer func() {
			if err := notifier.Close(); err != nil {
				log.Error("Error closing Redis notifier", zap.Error(err))
			}
		}()
		stockAlertHandler.WithNotifier(notifier)
		batchStatusHandler.WithNotifier(notifier)
		log.Info("Redis notifier connected",
			zap.String("channel", cfg.Notify.Channel),
		)
	}

	eventBus.Subscribe(stockAlertHandler)
	eventBus.Subscribe(batchStatusHandler)
	log.Info("Event handlers registered",
		zap.Strings("stock_alert_events", stockAlertHandler.EventTypes()),
		zap.Strings("batch_status_events", batchStatusHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	materialService.SetEventPublisher(eventBus)
	batchService.SetEventPublisher(eventBus)
	commitService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	materialHandler := handler.NewMaterialHandler(materialService)
	batchHandler := handler.NewBatchHandler(batchService, commitService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first, then recovery, logging, security
	// headers, operator identity, CORS and the body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.Actor())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(materialHandler).
		Register(batchHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
