package routes

import (
	"gift-core/internal/handler"
	"gift-core/internal/middleware"
	"gift-core/internal/model"

	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(rg *gin.RouterGroup, admin *handler.AdminHandler, withdrawals *handler.WithdrawHandler,
	verification *handler.VerificationHandler) {
	adminGroup := rg.Group("/admin", middleware.RequireRole(string(model.RoleAdmin)))
	{
		adminGroup.GET("/accounts", admin.ListAccounts)
		adminGroup.GET("/transactions", admin.ListTransactions)
		adminGroup.GET("/audit-logs", admin.AuditLogs)
		adminGroup.GET("/audit-logs/verify", admin.VerifyAuditLogs)
		adminGroup.GET("/stats", admin.Stats)

		adminGroup.GET("/withdrawals", withdrawals.ListAll)
		adminGroup.POST("/withdrawals/:id/review", withdrawals.ReviewWithdrawal)
		adminGroup.POST("/creators/:id/review", verification.Review)
		adminGroup.PUT("/accounts/:id/status", admin.SetAccountStatus)
		adminGroup.PUT("/users/:id/spending-limit", admin.SetSpendingLimit)
	}
}
