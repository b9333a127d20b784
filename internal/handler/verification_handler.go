package handler

import (
	"gift-core/internal/handler/request"
	"gift-core/internal/handler/response"
	"gift-core/internal/middleware"
	"gift-core/internal/model"
	"gift-core/internal/service"

	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	workflow service.VerificationWorkflow
}

func NewVerificationHandler(workflow service.VerificationWorkflow) *VerificationHandler {
	return &VerificationHandler{workflow: workflow}
}

// Submit 创作者提交认证
// @Summary 提交创作者认证
// @Description 返回预审结果、验证码与操作说明
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body request.SubmitVerificationRequest true "Verification Request"
// @Success 200 {object} response.Response
// @Router /api/v1/verifications [post]
func (h *VerificationHandler) Submit(c *gin.Context) {
	var req request.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.workflow.SubmitVerification(c.Request.Context(), middleware.ActorID(c), req.Handle)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"creator":           model.View(&res.Creator),
		"status":            res.Creator.VerificationStatus,
		"verification_code": res.Opinion.VerificationCode,
		"instructions":      res.Opinion.Instructions,
		"opinion":           res.Opinion,
	})
}

// Review 管理员审核认证申请
// @Summary 审核创作者认证
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Creator ID"
// @Param request body request.ReviewCreatorRequest true "Review Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/creators/{id}/review [post]
func (h *VerificationHandler) Review(c *gin.Context) {
	var req request.ReviewCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	creator, err := h.workflow.ReviewCreator(c.Request.Context(), c.Param("id"), model.VerificationStatus(req.Decision), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, model.View(creator))
}
