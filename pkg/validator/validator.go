package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 社交平台用户名: 可选 @ 前缀，字母数字下划线和点，2-30 位
var handlePattern = regexp.MustCompile(`^@?[A-Za-z0-9_.]{2,30}$`)

// Init 在 gin 的 binding 校验器上注册自定义规则，启动时调用一次
func Init() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Register(v)
}

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	return v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid request parameters"
	}

	var errMsgs []string
	for _, e := range validationErrors {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("%s is required", field))
		case "min", "gte":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be at least %s", field, param))
		case "gt":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be greater than %s", field, param))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be at most %s", field, param))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be one of [%s]", field, param))
		case "handle":
			errMsgs = append(errMsgs, fmt.Sprintf("%s is not a valid social handle", field))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("%s failed on %s", field, e.Tag()))
		}
	}
	return strings.Join(errMsgs, "; ")
}
