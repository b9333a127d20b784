package handler

import (
	"gift-core/internal/handler/response"
	"gift-core/internal/middleware"
	"gift-core/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	query service.Query
}

func NewAccountHandler(query service.Query) *AccountHandler {
	return &AccountHandler{query: query}
}

// Me 当前登录账户
func (h *AccountHandler) Me(c *gin.Context) {
	view, err := h.query.Account(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// MyTransactions 作为发送方或接收方参与的交易
func (h *AccountHandler) MyTransactions(c *gin.Context) {
	list, err := h.query.Transactions(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
