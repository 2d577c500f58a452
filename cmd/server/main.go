package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fulfillmentapp "github.com/fulfil/backend/internal/application/fulfillment"
	inventoryapp "github.com/fulfil/backend/internal/application/inventory"
	pickingapp "github.com/fulfil/backend/internal/application/picking"
	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/infrastructure/auth"
	"github.com/fulfil/backend/internal/infrastructure/cache"
	"github.com/fulfil/backend/internal/infrastructure/config"
	"github.com/fulfil/backend/internal/infrastructure/event"
	"github.com/fulfil/backend/internal/infrastructure/logger"
	"github.com/fulfil/backend/internal/infrastructure/persistence"
	"github.com/fulfil/backend/internal/infrastructure/scheduler"
	"github.com/fulfil/backend/internal/infrastructure/telemetry"
	"github.com/fulfil/backend/internal/interfaces/http/handler"
	"github.com/fulfil/backend/internal/interfaces/http/middleware"
	"github.com/fulfil/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	log.Info("Starting Fulfillment Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Initialize telemetry providers. Disabled telemetry yields no-op
	// providers, so the wiring below is unconditional.
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logs provider", zap.Error(err))
		}
	}()

	// Swap the application logger for one that also exports to the
	// collector. The gorm logger keeps the plain zap instance.
	if logsProvider.IsEnabled() {
		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, logsProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Fatal("Failed to bridge logger to collector", zap.Error(err))
		}
		log = bridged
	}

	// Database query tracing and metrics
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled {
		dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
		dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("fulfil/db"), dbMetricsCfg, log)
		if err != nil {
			log.Warn("Failed to create database metrics", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register database metrics plugin", zap.Error(err))
		}
	}

	// Domain metrics with periodic gauge collection
	var fulfillMetrics *telemetry.FulfillmentMetrics
	if cfg.Telemetry.Enabled {
		fulfillMetrics, err = telemetry.NewFulfillmentMetrics(telemetry.FulfillmentMetricsConfig{
			Meter:    meterProvider.Meter("fulfil/backend"),
			Logger:   log,
			Provider: telemetry.NewGormFulfillmentMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create fulfillment metrics", zap.Error(err))
		}
		fulfillMetrics.StartPeriodicCollection(ctx, telemetry.NewGormStoreProvider(db.DB),
			5*time.Minute, cfg.Picking.StaleAfter)
		defer fulfillMetrics.Stop()
	}

	// Redis backs the token blacklist and, optionally, the session code
	// sequence. A missing Redis downgrades the blacklist to in-process.
	var redisClient *redis.Client
	{
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
			_ = client.Close()
		} else {
			redisClient = client
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Error closing Redis client", zap.Error(err))
				}
			}()
		}
		cancel()
	}

	var tokenBlacklist auth.TokenBlacklist
	if redisClient != nil {
		tokenBlacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Session code sequence backend
	var codeAllocator picking.CodeAllocator
	switch cfg.Picking.CodeAllocator {
	case "redis":
		if redisClient == nil {
			log.Fatal("Picking code allocator is configured for Redis but Redis is unavailable")
		}
		codeAllocator = cache.NewRedisCodeAllocatorWithClient(redisClient, "")
	default:
		codeAllocator = persistence.NewPostgresCodeAllocator(db.DB)
	}
	log.Info("Session code allocator initialized",
		zap.String("backend", cfg.Picking.CodeAllocator),
	)

	// Packing counter tiers in fallback order
	incrementers := persistence.BuildIncrementers(db.DB, cfg.Picking.IncrementTiers, cfg.Picking.CASMaxRetries)
	log.Info("Packing increment tiers configured",
		zap.Strings("tiers", cfg.Picking.IncrementTiers),
		zap.Int("cas_max_retries", cfg.Picking.CASMaxRetries),
	)

	// Initialize repositories and transaction scopes
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormInventoryMovementRepository(db.DB)

	fulfillScope := persistence.NewGormFulfillmentTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	pickingScope := persistence.NewGormPickingTransactionScope(db.DB, incrementers)

	// Domain event bus with the activity feed subscribed
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogHandler(log))

	// Initialize application services
	orderService := fulfillmentapp.NewOrderService(fulfillScope, orderRepo)
	orderService.SetEventPublisher(eventBus)
	var pickMetrics pickingapp.MetricsRecorder
	if fulfillMetrics != nil {
		orderService.SetTransitionRecorder(fulfillMetrics)
		pickMetrics = fulfillMetrics
	}
	sessionService := pickingapp.NewSessionService(
		pickingScope,
		pickingScope,
		sessionRepo,
		codeAllocator,
		pickMetrics,
		pickingapp.Config{
			CodePrefix: cfg.Picking.CodePrefix,
			StaleAfter: cfg.Picking.StaleAfter,
		},
		log,
	)
	sessionService.SetEventPublisher(eventBus)
	productService := inventoryapp.NewProductService(inventoryScope, productRepo)
	reconciliationService := inventoryapp.NewReconciliationService(productRepo, movementRepo, log)

	// JWT service for device authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Periodic stock reconciliation sweep
	if cfg.Reconcile.Enabled {
		sweeper := scheduler.NewReconcileSweeper(scheduler.ReconcileSweeperConfig{
			Enabled:  true,
			Interval: cfg.Reconcile.Interval,
		}, telemetry.NewGormStoreProvider(db.DB), reconciliationService, log)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start reconciliation sweeper", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				log.Error("Error stopping reconciliation sweeper", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	pickingHandler := handler.NewPickingHandler(sessionService)
	inventoryHandler := handler.NewInventoryHandler(productService, reconciliationService)
	authHandler := handler.NewAuthHandler(jwtService, tokenBlacklist, cfg.JWT.DeviceKey)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - Observe requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("fulfil/http"), true))
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Order lifecycle
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/ready-to-ship", orderHandler.ListReadyToShip)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.PATCH("/:id", orderHandler.Patch)
	orderRoutes.POST("/:id/transition", orderHandler.Transition)

	// Picking sessions
	sessionRoutes := router.NewDomainGroup("sessions", "/sessions")
	sessionRoutes.POST("", pickingHandler.Create)
	sessionRoutes.GET("", pickingHandler.List)
	sessionRoutes.GET("/stale", pickingHandler.ListStale)
	sessionRoutes.GET("/code/:code", pickingHandler.GetByCode)
	sessionRoutes.GET("/:id", pickingHandler.GetByID)
	sessionRoutes.POST("/:id/picks", pickingHandler.RecordPick)
	sessionRoutes.POST("/:id/start-packing", pickingHandler.StartPacking)
	sessionRoutes.POST("/:id/packs", pickingHandler.IncrementPacked)
	sessionRoutes.GET("/:id/progress", pickingHandler.ListProgress)
	sessionRoutes.POST("/:id/complete", pickingHandler.Complete)
	sessionRoutes.POST("/:id/abandon", pickingHandler.Abandon)

	// Product catalog and stock
	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.POST("", inventoryHandler.Create)
	productRoutes.GET("", inventoryHandler.List)
	productRoutes.GET("/:id", inventoryHandler.GetByID)
	productRoutes.POST("/:id/adjust-stock", inventoryHandler.AdjustStock)
	productRoutes.GET("/:id/movements", inventoryHandler.ListMovements)

	// Inventory health
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/reconciliation", inventoryHandler.Reconcile)

	// Device authentication
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(orderRoutes).
		Register(sessionRoutes).
		Register(productRoutes).
		Register(inventoryRoutes).
		Register(authRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
