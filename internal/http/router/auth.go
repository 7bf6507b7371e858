package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/siemd/internal/http/handler"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler) {
	rg.POST("/login", h.Login)
}
