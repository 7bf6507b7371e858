package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/siemd/common/id"
	"basegraph.app/siemd/common/logger"
	"basegraph.app/siemd/common/otel"
	"basegraph.app/siemd/core/config"
	"basegraph.app/siemd/core/db"
	"basegraph.app/siemd/internal/http/middleware"
	httprouter "basegraph.app/siemd/internal/http/router"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/lock"
	"basegraph.app/siemd/internal/metrics"
	"basegraph.app/siemd/internal/service"
	"basegraph.app/siemd/internal/store"
	"basegraph.app/siemd/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg, config.ServiceTypeServer)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "siemd server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
		os.Exit(1)
	}

	locker, closeLocker, err := lock.Open(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up file locks", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	root, err := ingest.CanonicalRoot(cfg.Ingest.LogDir)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve log dir", "error", err, "log_dir", cfg.Ingest.LogDir)
		os.Exit(1)
	}
	cfg.Ingest.LogDir = root

	normalizer, err := ingest.NewNormalizer(root, cfg.Limits)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create normalizer", "error", err)
		os.Exit(1)
	}

	metricsHandler := metrics.New()
	services := service.NewServices(
		store.NewStores(database.Queries()),
		service.NewTxRunner(database),
		normalizer,
		locker,
		metricsHandler,
		cfg,
	)

	var ingestWorker *worker.Worker
	if cfg.Ingest.Enabled {
		ingestWorker = worker.New(services.Ingest(), worker.Config{
			LogDir:            root,
			PollInterval:      cfg.Ingest.PollInterval,
			BatchSize:         cfg.Ingest.BatchSize,
			MaxBatchesPerFile: cfg.Ingest.MaxBatchesPerFile,
		})
		go func() {
			if err := ingestWorker.Run(ctx); err != nil {
				slog.ErrorContext(ctx, "ingest worker exited", "error", err)
			}
		}()
	} else {
		slog.InfoContext(ctx, "background ingestion disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, database, metricsHandler)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if ingestWorker != nil {
		ingestWorker.Stop()
		slog.InfoContext(shutdownCtx, "ingest worker stopped")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, database *db.DB, metricsHandler *metrics.Handler) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	if len(cfg.CORS) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Authorization", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		LogDir:            cfg.Ingest.LogDir,
		Extension:         cfg.Ingest.Extension,
		BatchSize:         cfg.Ingest.BatchSize,
		MaxBatchesPerFile: cfg.Ingest.MaxBatchesPerFile,
		DB:                database,
		Metrics:           metricsHandler.HTTPHandler(),
	})

	return router
}
