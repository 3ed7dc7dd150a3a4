package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/controllers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/database"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/kafka"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/logger"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/repository"
	"github.com/TomMcAvoy/e-commerce-platform-sub000/routes"
	servicepkg "github.com/TomMcAvoy/e-commerce-platform-sub000/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional in containers; real env vars win either way.
		zap.L().Debug(".env not loaded", zap.Error(err))
	}

	log := logger.Initialize(os.Getenv("ENV"))
	defer log.Sync() //nolint:errcheck

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	if err := database.Connect(cfg.MongoURL, cfg.MongoDB); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	// Repositories
	productRepo := repository.NewMongoProductRepository(database.DB)
	categoryRepo := repository.NewMongoCategoryRepository(database.DB)
	mappingRepo := repository.NewMongoOrderMappingRepository(database.DB)
	syncRunRepo := repository.NewMongoSyncRunRepository(database.DB)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer idxCancel()
	for _, ensure := range []func(context.Context) error{
		productRepo.EnsureIndexes,
		categoryRepo.EnsureIndexes,
		mappingRepo.EnsureIndexes,
	} {
		if err := ensure(idxCtx); err != nil {
			log.Fatal("Failed to ensure indexes", zap.Error(err))
		}
	}

	// Provider registry: only adapters with credentials are registered.
	registry := providers.NewRegistry()
	if ali := cfg.AlibabaConfig(); ali.Configured() {
		registry.Register(providers.NewAlibabaProvider(ali, log))
		log.Info("Registered provider", zap.String("provider", providers.AlibabaName))
	} else {
		log.Warn("Alibaba provider not configured, catalog syncs will use the default taxonomy")
	}

	// Kafka events (optional)
	var events servicepkg.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	} else {
		log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	// Services
	limiter := servicepkg.NewProviderLimiter(cfg.ProviderRateRPS, cfg.ProviderRateBurst)
	importer := servicepkg.NewCatalogImporter(registry, productRepo, categoryRepo, syncRunRepo, limiter,
		servicepkg.ImporterConfig{
			MarkupFactor: cfg.MarkupFactor,
			PageSize:     cfg.ImportPageSize,
			MaxPages:     cfg.ImportMaxPages,
			Workers:      cfg.ImportWorkers,
		}, events, log)
	reconciler := servicepkg.NewInventoryReconciler(registry, productRepo, syncRunRepo, limiter,
		cfg.MarkupFactor, 50, log)
	dispatcher := servicepkg.NewOrderDispatcher(registry, productRepo, mappingRepo, events, log)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Async sync queue (optional, needs redis)
	var queue controllers.SyncQueueAPI
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close() //nolint:errcheck

		syncQueue := servicepkg.NewSyncQueue(rdb, importer, log)
		syncQueue.StartWorker(workerCtx)
		queue = syncQueue
	} else {
		log.Warn("REDIS_URL not set, async catalog sync disabled")
	}

	// Controllers
	syncController := controllers.NewSyncController(importer, reconciler, queue)
	orderController := controllers.NewOrderController(dispatcher)
	webhookController := controllers.NewWebhookController(dispatcher)
	providerController := controllers.NewProviderController(registry)

	// Scheduled reconcile over every (tenant, provider) pair that has synced.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReconcileCron, func() {
		runScheduledReconcile(workerCtx, syncRunRepo, reconciler, log)
	}); err != nil {
		log.Fatal("Invalid RECONCILE_CRON", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.New()
	r.Use(gin.Recovery())

	// Global request-logging middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
		)
	})

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "dropship-service"})
	})

	routes.RegisterSyncRoutes(r, syncController)
	routes.RegisterOrderRoutes(r, orderController)
	routes.RegisterWebhookRoutes(r, webhookController)
	routes.RegisterProviderRoutes(r, providerController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Dropship service started", zap.String("port", cfg.Port))
	<-quit
	log.Info("Shutting down dropship service...")
	workerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited cleanly")
}

// runScheduledReconcile refreshes inventory for every tenant/provider pair
// with a recorded sync. Pairs fail independently.
func runScheduledReconcile(ctx context.Context, syncRuns repository.SyncRunRepository, reconciler *servicepkg.InventoryReconciler, log *zap.Logger) {
	pairs, err := syncRuns.ListPairs(ctx)
	if err != nil {
		log.Error("Scheduled reconcile: listing sync pairs failed", zap.Error(err))
		return
	}
	for _, pair := range pairs {
		summary, err := reconciler.Reconcile(ctx, pair.TenantID, pair.Provider)
		if err != nil {
			log.Error("Scheduled reconcile failed",
				zap.String("tenant_id", pair.TenantID),
				zap.String("provider", pair.Provider),
				zap.Error(err),
			)
			continue
		}
		log.Info("Scheduled reconcile complete",
			zap.String("tenant_id", pair.TenantID),
			zap.String("provider", pair.Provider),
			zap.Int("updated", summary.Updated),
			zap.Int("skipped", summary.Skipped),
		)
	}
}
