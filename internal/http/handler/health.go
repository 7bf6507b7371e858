package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/dto"
	"basegraph.app/siemd/internal/ingest"
)

const maxSampleFiles = 50

// Pinger reports database reachability. *db.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logDir string
	ext    string
}

func NewHealthHandler(db Pinger, logDir, ext string) *HealthHandler {
	return &HealthHandler{db: db, logDir: logDir, ext: ext}
}

// Health always answers 200. The body reports whether the log dir and the
// database are reachable.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	resp := dto.HealthResponse{
		Status:         "ok",
		TSUTC:          time.Now().UTC().Format(time.RFC3339Nano),
		LogDir:         h.logDir,
		SampleLogFiles: []string{},
		Database:       "ok",
	}

	if info, err := os.Stat(h.logDir); err == nil && info.IsDir() {
		resp.LogDirExists = true
		files, err := ingest.DiscoverFiles(h.logDir, h.ext)
		if err != nil {
			slog.WarnContext(ctx, "health: listing log files failed", "error", err)
		}
		if len(files) > maxSampleFiles {
			files = files[:maxSampleFiles]
		}
		if files != nil {
			resp.SampleLogFiles = files
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.db.Ping(pingCtx); err != nil {
		slog.WarnContext(ctx, "health: database ping failed", "error", err)
		resp.Database = "unreachable"
	}

	c.JSON(http.StatusOK, resp)
}
