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

	importapp "github.com/sellerops/backend/internal/application/import"
	"github.com/sellerops/backend/internal/infrastructure/cache"
	"github.com/sellerops/backend/internal/infrastructure/config"
	orderimport "github.com/sellerops/backend/internal/infrastructure/import"
	"github.com/sellerops/backend/internal/infrastructure/logger"
	"github.com/sellerops/backend/internal/infrastructure/persistence"
	"github.com/sellerops/backend/internal/infrastructure/scheduler"
	"github.com/sellerops/backend/internal/infrastructure/storage"
	"github.com/sellerops/backend/internal/infrastructure/warehouse"
	"github.com/sellerops/backend/internal/interfaces/http/handler"
	"github.com/sellerops/backend/internal/interfaces/http/middleware"
	"github.com/sellerops/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting seller operations backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Session store: Redis when configured, in-memory otherwise
	var sessions orderimport.SessionStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisSessionStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Import.SessionTTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		sessions = redisStore
		log.Info("Redis session store connected")
	} else {
		memStore := orderimport.NewInMemorySessionStore(cfg.Import.SessionTTL)
		defer memStore.Stop()
		sessions = memStore
		log.Info("Using in-memory session store")
	}

	// Upload archive: S3 when configured, no-op otherwise
	var archive storage.FileArchive = storage.NewNoopArchive()
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize S3 archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure archive bucket", zap.Error(err))
		}
		archive = s3Archive
		log.Info("S3 archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Warehouse service client: catalog snapshots and bulk order creation
	warehouseClient, err := warehouse.NewClient(&cfg.Warehouse, warehouse.WithClientLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize warehouse client", zap.Error(err))
	}

	// Repositories and application services
	historyRepo := persistence.NewGormImportHistoryRepository(db.DB)
	importService := importapp.NewOrderImportService(
		warehouseClient,
		warehouseClient,
		sessions,
		historyRepo,
		archive,
		importapp.WithMaxFileSize(cfg.Import.MaxFileSize),
		importapp.WithLogger(log),
	)
	historyService := importapp.NewImportHistoryService(historyRepo)

	// Sweep abandoned runs: histories stuck in processing after their session
	// lapsed are moved to expired
	expirySweeper := scheduler.NewHistoryExpirySweeper(scheduler.HistoryExpiryConfig{
		CheckInterval: cfg.Import.ExpirySweepInterval,
		MaxAge:        cfg.Import.SessionTTL,
		BatchSize:     100,
	}, historyRepo, log)
	if err := expirySweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start history expiry sweeper", zap.Error(err))
	}

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	// Routes
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine).
		Register(handler.NewOrderImportHandler(importService, historyService, cfg.Import.MaxFileSize)).
		Register(systemHandler).
		Setup()

	// HTTP server with config timeouts
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	if err := expirySweeper.Stop(ctx); err != nil {
		log.Error("History expiry sweeper shutdown failed", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
