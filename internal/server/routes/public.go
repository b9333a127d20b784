package routes

import (
	"gift-core/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 无需登录的只读接口
func RegisterPublicRoutes(rg *gin.RouterGroup, gifts *handler.GiftHandler) {
	rg.GET("/gifts", gifts.ListGifts)
	rg.GET("/creators", gifts.ListCreators)
}
