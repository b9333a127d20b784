package response

import (
	"net/http"

	"gift-core/pkg/errno"
	"gift-core/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Created is Success with 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error 按错误分类写 HTTP 状态码，内部错误不向调用方暴露细节
func Error(c *gin.Context, err error) {
	status, body := build(c, err)
	c.JSON(status, body)
}

// Abort 用于中间件，写完响应后终止后续 handler
func Abort(c *gin.Context, err error) {
	status, body := build(c, err)
	c.AbortWithStatusJSON(status, body)
}

// AbortWithStatus 使用调用方指定的状态码
func AbortWithStatus(c *gin.Context, status int, err error) {
	_, body := build(c, err)
	c.AbortWithStatusJSON(status, body)
}

func build(c *gin.Context, err error) (int, Response) {
	status := errno.HTTPStatus(err)
	code, msg := errno.Decode(err)
	if status >= http.StatusInternalServerError && errno.KindOf(err) == errno.KindInternal {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		code, msg = errno.InternalServerError.Code, errno.InternalServerError.Message
	}
	_ = c.Error(err)
	return status, Response{
		Code:    code,
		Message: msg,
		Data:    gin.H{},
	}
}
