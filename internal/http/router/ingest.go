package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/handler"
)

func IngestRouter(rg *gin.RouterGroup, h *handler.IngestHandler) {
	rg.POST("/run", h.Run)
}
