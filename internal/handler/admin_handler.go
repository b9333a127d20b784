package handler

import (
	"gift-core/internal/handler/request"
	"gift-core/internal/handler/response"
	"gift-core/internal/middleware"
	"gift-core/internal/model"
	"gift-core/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	accounts service.AccountAdmin
	query    service.Query
}

func NewAdminHandler(accounts service.AccountAdmin, query service.Query) *AdminHandler {
	return &AdminHandler{accounts: accounts, query: query}
}

// ListAccounts 全部账户
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	list, err := h.query.Accounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListTransactions 全部送礼记录，按时间倒序
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	list, err := h.query.Transactions(c.Request.Context(), "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// AuditLogs 审计日志，按 Seq 升序
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	list, err := h.query.AuditLog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// VerifyAuditLogs 重新计算审计哈希链
// @Summary 校验审计链
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/audit-logs/verify [get]
func (h *AdminHandler) VerifyAuditLogs(c *gin.Context) {
	n, err := h.query.VerifyAuditLog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"valid": true, "entries": n})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.query.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, st)
}

// SetAccountStatus 封禁/解封
// @Summary 设置账户状态
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body request.SetAccountStatusRequest true "Status Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/accounts/{id}/status [put]
func (h *AdminHandler) SetAccountStatus(c *gin.Context) {
	var req request.SetAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	view, err := h.accounts.SetAccountStatus(c.Request.Context(), c.Param("id"), model.AccountStatus(req.Status), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// SetSpendingLimit 调整单笔消费上限
// @Summary 设置消费上限
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body request.SetSpendingLimitRequest true "Limit Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/users/{id}/spending-limit [put]
func (h *AdminHandler) SetSpendingLimit(c *gin.Context) {
	var req request.SetSpendingLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	view, err := h.accounts.SetSpendingLimit(c.Request.Context(), c.Param("id"), *req.SpendingLimit, middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
