package handler

import (
	"context"
	"net/http"
	"time"

	"gift-core/internal/handler/response"
	"gift-core/internal/service"
	"gift-core/pkg/errno"
	"gift-core/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthProbeTimeout = 2 * time.Second

type HealthHandler struct {
	query   service.Query
	started time.Time
}

// NewHealthHandler query 为 nil 时只报告进程存活，不探测存储
func NewHealthHandler(query service.Query) *HealthHandler {
	return &HealthHandler{query: query, started: time.Now()}
}

// Check godoc
// @Summary Check system health
// @Description Reports process uptime and whether the ledger store answers reads
// @Tags system
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	data := gin.H{
		"status":  "UP",
		"service": "gift-server",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.query == nil {
		response.Success(c, data)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()
	if _, err := h.query.Gifts(ctx); err != nil {
		logger.Warn("健康检查: 存储不可用", zap.Error(err))
		data["status"] = "DOWN"
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    errno.InternalServerError.Code,
			Message: "store unavailable",
			Data:    data,
		})
		return
	}
	data["store"] = "UP"
	response.Success(c, data)
}
