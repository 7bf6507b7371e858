package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/handler"
)

func MetadataRouter(rg *gin.RouterGroup, h *handler.MetadataHandler) {
	rg.GET("/apps", h.Apps)
	rg.GET("/event-types", h.EventTypes)
	rg.GET("/files", h.Files)
	rg.GET("/schema", h.Schema)
}
