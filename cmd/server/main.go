package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/GoAMM/hookgate/internal/handler"
	"github.com/GoAMM/hookgate/internal/middleware"
	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/notify"
	"github.com/GoAMM/hookgate/internal/pkg/logger"
	"github.com/GoAMM/hookgate/internal/repository"
	"github.com/GoAMM/hookgate/internal/service"
	"github.com/GoAMM/hookgate/internal/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Persistence
	// Policy State (Redis > Memory)
	var store service.StateStore
	var redisStore *repository.RedisStore
	if cfg.Redis.Addr != "" {
		redisStore, err = repository.NewRedisStore(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			store = redisStore
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if store == nil {
		store = repository.NewMemoryStore()
	}

	// Bootstrap state: default threshold and the deployer principals
	if err := store.Seed(ctx, cfg.Policy.DefaultThreshold, bootstrapPrincipals(cfg)); err != nil {
		log.Fatalf("Failed to seed policy state: %v", err)
	}

	// Audit Persistence (Postgres > Redis list > In-memory buffer)
	var auditRepo service.AuditRepo
	var pgAudit *repository.PostgresAuditRepo
	if cfg.Database.DSN != "" {
		db, dbErr := repository.NewDB(cfg)
		if dbErr == nil {
			pgAudit, dbErr = repository.NewPostgresAuditRepo(db)
		}
		if dbErr != nil {
			logger.Error("⚠️ Failed to set up audit DB, audit logs will be file-only", "error", dbErr)
		} else {
			logger.Info("✅ Connected to PostgreSQL")
			auditRepo = pgAudit
		}
	}
	if auditRepo == nil && redisStore != nil {
		auditRepo = repository.NewRedisAuditRepo(redisStore.Client, "", 0)
	}

	auditSvc, err := service.NewAuditService("./logs", auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// Audit retention: purge rows past the configured window, once at
	// startup and then twice a day.
	if pgAudit != nil && cfg.Database.AuditRetentionDays > 0 {
		retention := cfg.Database.AuditRetentionDays
		go func() {
			ticker := time.NewTicker(12 * time.Hour)
			defer ticker.Stop()
			for {
				if purgeErr := pgAudit.Purge(ctx, retention); purgeErr != nil {
					logger.Error("Audit retention purge failed", "error", purgeErr)
				}
				<-ticker.C
			}
		}()
	}

	// Relay report history (optional)
	var history service.ReportHistory
	if cfg.Database.DSN != "" {
		if repo, err := repository.NewGormReportRepo(cfg); err == nil {
			history = repo
		} else {
			logger.Error("⚠️ Report history unavailable", "error", err)
		}
	}

	// 3. Initialize Notification Channel
	hub := notify.NewHub(logger.Get())
	sinks := []notify.Sink{hub}
	if redisStore != nil {
		sinks = append(sinks, notify.NewRedisSink(redisStore.Client, cfg.Notify.Channel, cfg.Notify.Stream, cfg.Notify.StreamMax))
	}
	var eventSigner *signer.Signer
	if cfg.Notify.SigningKey != "" {
		eventSigner, err = signer.NewSigner(cfg.Notify.SigningKey)
		if err != nil {
			log.Fatalf("Failed to initialize event signer: %v", err)
		}
		logger.Info("✅ Outbound events will be signed", "signer", eventSigner.Address().Hex())
	}
	dispatcher := notify.NewDispatcher(logger.Get(), eventSigner, sinks...)

	// 4. Initialize Core Services
	registry := service.NewRegistry(store)
	policy := service.NewThresholdPolicy(store, registry)
	engine := service.NewDecisionEngine(service.NewFixedCostModel(cfg.Cost))
	tracker := service.NewPendingTracker(store)
	stats := service.NewAggregator(store, registry, history)
	hookSvc := service.NewHookService(registry, policy, engine, tracker, stats, dispatcher)

	idempotencyStore := middleware.NewInMemIdempotencyStore()

	// 5. Initialize Handlers
	hookHandler := handler.NewHookHandler(hookSvc)
	adminHandler := handler.NewAdminHandler(hookSvc)
	queryHandler := handler.NewQueryHandler(hookSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)

	// 6. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "hookgate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	{
		// Lifecycle hook surface, invoked by the host around swap
		// execution. Never blocked by read-only mode.
		hooks := v1.Group("/hooks")
		hooks.Use(middleware.IdempotencyMiddleware(idempotencyStore))
		{
			hooks.POST("/before-swap", hookHandler.BeforeSwap)
			hooks.POST("/after-swap", hookHandler.AfterSwap)
		}

		// Read surface
		v1.GET("/venues/:venue/metrics", queryHandler.GetMetrics)
		v1.GET("/venues/:venue/threshold", queryHandler.GetThreshold)
		v1.GET("/authorization/:principal", queryHandler.IsAuthorized)
		v1.GET("/reports", queryHandler.ListReports)
		v1.GET("/audit", auditHandler.List)

		// Relayer event stream
		v1.GET("/stream", func(c *gin.Context) {
			hub.ServeWS(c.Writer, c.Request)
		})

		// Admin surface (authorized principals only)
		admin := v1.Group("/admin")
		admin.Use(middleware.CallerMiddleware())
		admin.Use(middleware.RateLimitMiddleware(cfg))
		admin.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))
		{
			admin.PUT("/threshold", adminHandler.SetDefaultThreshold)
			admin.PUT("/venues/:venue/threshold", adminHandler.SetVenueThreshold)
			admin.PUT("/authorization", adminHandler.SetAuthorization)
			admin.POST("/venues/:venue/report", adminHandler.ReportPerformance)
		}
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("🚀 HookGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-gctx.Done():
		}
		logger.Info("🛑 Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		auditSvc.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}

	logger.Info("Server exiting")
}

func bootstrapPrincipals(cfg *config.Config) []model.Principal {
	principals := make([]model.Principal, 0, len(cfg.Policy.Authorized))
	for _, raw := range cfg.Policy.Authorized {
		if !common.IsHexAddress(raw) {
			logger.Warn("Skipping invalid bootstrap principal", "value", raw)
			continue
		}
		principals = append(principals, common.HexToAddress(raw))
	}
	if len(principals) == 0 {
		logger.Warn("No bootstrap principals configured; admin surface is locked until one is seeded")
	}
	return principals
}
