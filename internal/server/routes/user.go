package routes

import (
	"gift-core/internal/handler"
	"gift-core/internal/middleware"
	"gift-core/internal/model"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 登录用户的接口，调用方身份来自 access token
func RegisterUserRoutes(rg *gin.RouterGroup, gifts *handler.GiftHandler, withdrawals *handler.WithdrawHandler,
	verification *handler.VerificationHandler, accounts *handler.AccountHandler) {
	rg.GET("/me", accounts.Me)
	rg.GET("/transactions", accounts.MyTransactions)

	// POST /api/v1/gifts/send
	rg.POST("/gifts/send", gifts.SendGift)

	creator := rg.Group("", middleware.RequireRole(string(model.RoleCreator)))
	{
		creator.POST("/withdrawals", withdrawals.CreateWithdrawal)
		creator.GET("/withdrawals", withdrawals.ListMine)
		creator.POST("/verifications", verification.Submit)
	}
}
