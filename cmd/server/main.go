package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/realty/backend/internal/application/catalog"
	inventoryapp "github.com/realty/backend/internal/application/inventory"
	realtyapp "github.com/realty/backend/internal/application/realty"
	tradeapp "github.com/realty/backend/internal/application/trade"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/infrastructure/auth"
	billingbridge "github.com/realty/backend/internal/infrastructure/billing"
	"github.com/realty/backend/internal/infrastructure/cache"
	"github.com/realty/backend/internal/infrastructure/config"
	"github.com/realty/backend/internal/infrastructure/event"
	"github.com/realty/backend/internal/infrastructure/logger"
	"github.com/realty/backend/internal/infrastructure/persistence"
	"github.com/realty/backend/internal/infrastructure/scheduler"
	"github.com/realty/backend/internal/interfaces/http/handler"
	"github.com/realty/backend/internal/interfaces/http/middleware"
	"github.com/realty/backend/internal/interfaces/http/router"
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

	log.Info("Starting Realty Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Auto-migrate schema outside production; production uses cmd/migrate
	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	buildingRepo := persistence.NewGormBuildingRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	orderRepo := persistence.NewGormReservationOrderRepository(db.DB)
	quantLedger := persistence.NewGormStockQuantLedger(db.DB)

	// Billing bridge stands in for the external invoicing and delivery engines
	bridge := billingbridge.NewBridge(log)

	// Application services
	syncService := realtyapp.NewMirrorSyncService(propertyRepo, listingRepo, buildingRepo, log)
	propertyService := realtyapp.NewPropertyService(propertyRepo, buildingRepo, listingRepo, syncService, log)
	listingService := catalogapp.NewListingService(listingRepo, propertyRepo, syncService, log)
	reservationService := tradeapp.NewReservationService(
		orderRepo, propertyRepo, listingRepo, buildingRepo, syncService, bridge, bridge, log)

	// Event bus wiring
	eventBus := event.NewInMemoryEventBus(log)
	syncService.SetEventPublisher(eventBus)
	propertyService.SetEventPublisher(eventBus)
	listingService.SetEventPublisher(eventBus)
	reservationService.SetEventPublisher(eventBus)
	bridge.SetEventPublisher(eventBus)

	// Idempotency store for the workflow event handlers
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = cache.NewRedisIdempotencyStore(redisClient)
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore(10 * time.Minute)
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	idempotencyConfig := shared.IdempotencyConfig{
		Enabled: cfg.Event.IdempotencyEnabled,
		TTL:     cfg.Event.IdempotencyTTL,
	}

	// Workflow policy handlers react to billing engine callbacks
	policy := tradeapp.WorkflowPolicy(cfg.Workflow.Policy)
	workflowHandlers := []shared.EventHandler{
		tradeapp.NewInvoicePostedHandler(reservationService, policy, log),
		tradeapp.NewInvoicePaidHandler(reservationService, policy, log),
		tradeapp.NewDeliveryValidatedHandler(reservationService, policy, log),
	}
	for _, h := range workflowHandlers {
		eventBus.Subscribe(event.NewIdempotentHandler(h, idempotencyStore, log,
			event.WithIdempotencyConfig(idempotencyConfig)))
	}
	log.Info("Workflow handlers registered", zap.String("policy", string(policy)))

	// Stock projector mirrors listing states into the quant ledger
	stockLocationID := uuid.Nil
	if cfg.Inventory.StockLocationID != "" {
		stockLocationID, err = uuid.Parse(cfg.Inventory.StockLocationID)
		if err != nil {
			log.Fatal("Invalid inventory.stock_location_id", zap.Error(err))
		}
	}
	projector := inventoryapp.NewProjectorService(quantLedger, listingRepo, stockLocationID, log)
	eventBus.Subscribe(projector)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Lock sweeper releases reservation locks abandoned past the timeout
	if cfg.PropertyLock.SweepEnabled {
		sweeper := scheduler.NewLockSweeper(scheduler.LockSweeperConfig{
			CheckInterval: cfg.PropertyLock.CheckInterval,
			Timeout:       cfg.PropertyLock.Timeout,
		}, propertyRepo, orderRepo, syncService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start lock sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping lock sweeper", zap.Error(err))
			}
		}()
		log.Info("Lock sweeper started",
			zap.Duration("check_interval", cfg.PropertyLock.CheckInterval),
			zap.Duration("timeout", cfg.PropertyLock.Timeout),
		)
	}

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(db)
	buildingHandler := handler.NewBuildingHandler(propertyService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	listingHandler := handler.NewListingHandler(listingService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	billingHandler := handler.NewBillingHandler(bridge)
	inventoryHandler := handler.NewInventoryHandler(projector)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.Logging(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/ready",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/billing/callback",
		},
	}))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(buildingHandler).
		Register(propertyHandler).
		Register(listingHandler).
		Register(reservationHandler).
		Register(billingHandler).
		Register(inventoryHandler)
	r.Setup()

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
