package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/handler"
)

func EventRouter(rg *gin.RouterGroup, h *handler.EventHandler) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
