package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/dto"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/service"
)

type MetadataHandler struct {
	metadataService service.MetadataService
}

func NewMetadataHandler(metadataService service.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadataService: metadataService}
}

func (h *MetadataHandler) Apps(c *gin.Context) {
	ctx := c.Request.Context()

	apps, err := h.metadataService.ListApps(ctx)
	if err != nil {
		if errors.Is(err, ingest.ErrLogDirUnavailable) {
			slog.WarnContext(ctx, "log dir unavailable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "log dir not available"})
			return
		}
		slog.ErrorContext(ctx, "failed to list apps", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list apps"})
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *MetadataHandler) EventTypes(c *gin.Context) {
	ctx := c.Request.Context()

	var app *string
	if v := c.Query("app"); v != "" {
		app = &v
	}

	types, err := h.metadataService.ListEventTypes(ctx, app)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list event types", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list event types"})
		return
	}

	if types == nil {
		types = []string{}
	}
	c.JSON(http.StatusOK, types)
}

func (h *MetadataHandler) Files(c *gin.Context) {
	ctx := c.Request.Context()

	files, err := h.metadataService.ListFiles(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list files", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFileOffsetResponses(files))
}

func (h *MetadataHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.metadataService.IncomingSchema())
}
