package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/service"
)

type IngestHandlerConfig struct {
	LogDir            string
	BatchSize         int
	MaxBatchesPerFile int
}

type IngestHandler struct {
	ingestService service.IngestService
	cfg           IngestHandlerConfig
}

func NewIngestHandler(ingestService service.IngestService, cfg IngestHandlerConfig) *IngestHandler {
	return &IngestHandler{ingestService: ingestService, cfg: cfg}
}

// Run performs one scan pass synchronously. Files already being drained by
// the background worker are skipped and show up in files_failed.
func (h *IngestHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.ingestService.IngestOnce(ctx, h.cfg.LogDir, h.cfg.BatchSize, h.cfg.MaxBatchesPerFile)
	if err != nil {
		slog.ErrorContext(ctx, "manual scan pass failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan pass failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
