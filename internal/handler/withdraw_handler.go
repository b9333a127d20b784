package handler

import (
	"gift-core/internal/handler/request"
	"gift-core/internal/handler/response"
	"gift-core/internal/middleware"
	"gift-core/internal/model"
	"gift-core/internal/service"
	"gift-core/internal/store"

	"github.com/gin-gonic/gin"
)

type WithdrawHandler struct {
	workflow service.WithdrawalWorkflow
	query    service.Query
}

func NewWithdrawHandler(workflow service.WithdrawalWorkflow, query service.Query) *WithdrawHandler {
	return &WithdrawHandler{workflow: workflow, query: query}
}

// CreateWithdrawal 申请提现
// @Summary 申请提现
// @Description 创作者发起提现申请，高风险申请直接拒绝
// @Tags Withdrawal
// @Accept json
// @Produce json
// @Param request body request.CreateWithdrawalRequest true "Withdraw Request"
// @Success 201 {object} response.Response
// @Router /api/v1/withdrawals [post]
func (h *WithdrawHandler) CreateWithdrawal(c *gin.Context) {
	var req request.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	w, err := h.workflow.RequestWithdrawal(c.Request.Context(), middleware.ActorID(c), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, w)
}

// ListMine 当前创作者的提现记录
func (h *WithdrawHandler) ListMine(c *gin.Context) {
	list, err := h.query.Withdrawals(c.Request.Context(), store.WithdrawalFilter{CreatorID: middleware.ActorID(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListAll 管理员查看提现单，可按状态过滤
// @Summary 提现单列表
// @Tags Admin
// @Produce json
// @Param status query string false "pending | approved | rejected"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/withdrawals [get]
func (h *WithdrawHandler) ListAll(c *gin.Context) {
	var q request.ListWithdrawalsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	list, err := h.query.Withdrawals(c.Request.Context(), store.WithdrawalFilter{Status: model.WithdrawalStatus(q.Status)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ReviewWithdrawal 审核提现
// @Summary 审核提现
// @Description 管理员对提现申请进行审批 (approve/reject)
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Withdrawal ID"
// @Param request body request.ReviewWithdrawalRequest true "Review Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/withdrawals/{id}/review [post]
func (h *WithdrawHandler) ReviewWithdrawal(c *gin.Context) {
	var req request.ReviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	w, err := h.workflow.DecideWithdrawal(c.Request.Context(), c.Param("id"), service.Decision(req.Action), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}
