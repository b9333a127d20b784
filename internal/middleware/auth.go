package middleware

import (
	"strings"

	"gift-core/internal/handler/response"
	"gift-core/pkg/auth"
	"gift-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// gin.Context 中保存的调用方信息
const (
	ActorIDKey   = "actor_id"
	ActorRoleKey = "actor_role"
)

// Authenticate 校验 Authorization: Bearer <token>，通过后写入调用方 ID 与角色
func Authenticate(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Abort(c, errno.ErrTokenInvalid.WithMessage("Missing bearer token"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ActorIDKey, claims.Subject)
		c.Set(ActorRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole 只放行指定角色。真正的权限判断仍在服务层完成
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ActorRoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Abort(c, errno.ErrForbidden)
	}
}

// ActorID 当前请求的调用方账户 ID
func ActorID(c *gin.Context) string {
	return c.GetString(ActorIDKey)
}
