package handler

import (
	"gift-core/internal/handler/request"
	"gift-core/internal/handler/response"
	"gift-core/internal/middleware"
	"gift-core/internal/service"

	"github.com/gin-gonic/gin"
)

type GiftHandler struct {
	ledger service.GiftLedger
	query  service.Query
}

func NewGiftHandler(ledger service.GiftLedger, query service.Query) *GiftHandler {
	return &GiftHandler{ledger: ledger, query: query}
}

// ListGifts 礼物目录
// @Summary 礼物目录
// @Tags Gift
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/gifts [get]
func (h *GiftHandler) ListGifts(c *gin.Context) {
	gifts, err := h.query.Gifts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gifts)
}

// ListCreators 可以收礼的创作者 (已认证且未封禁)
// @Summary 可收礼创作者列表
// @Tags Gift
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/creators [get]
func (h *GiftHandler) ListCreators(c *gin.Context) {
	creators, err := h.query.Creators(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, creators)
}

// SendGift 送礼
// @Summary 送礼
// @Description 发送方为当前登录账户
// @Tags Gift
// @Accept json
// @Produce json
// @Param request body request.SendGiftRequest true "Send Gift Request"
// @Success 201 {object} response.Response
// @Router /api/v1/gifts/send [post]
func (h *GiftHandler) SendGift(c *gin.Context) {
	var req request.SendGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	tx, err := h.ledger.SendGift(c.Request.Context(), middleware.ActorID(c), req.CreatorID, req.GiftID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tx)
}
