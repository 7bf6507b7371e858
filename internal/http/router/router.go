package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/handler"
	"basegraph.app/siemd/internal/http/middleware"
	"basegraph.app/siemd/internal/service"
)

type RouterConfig struct {
	LogDir            string
	Extension         string
	BatchSize         int
	MaxBatchesPerFile int
	DB                handler.Pinger
	Metrics           http.Handler
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.LogDir, cfg.Extension)
	router.GET("/health", healthHandler.Health)

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	authService := services.Auth()
	AuthRouter(router.Group("/auth"), handler.NewAuthHandler(authService))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAdmin(authService))
	{
		EventRouter(v1.Group("/events"), handler.NewEventHandler(services.Events()))
		MetadataRouter(v1.Group("/metadata"), handler.NewMetadataHandler(services.Metadata()))
		IngestRouter(v1.Group("/ingest"), handler.NewIngestHandler(services.Ingest(), handler.IngestHandlerConfig{
			LogDir:            cfg.LogDir,
			BatchSize:         cfg.BatchSize,
			MaxBatchesPerFile: cfg.MaxBatchesPerFile,
		}))
	}
}
