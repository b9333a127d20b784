package handler

import (
	"gift-core/internal/handler/response"
	"gift-core/pkg/errno"
	"gift-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

// bindFailed 把校验错误翻译成可读信息
func bindFailed(c *gin.Context, err error) {
	response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
}
