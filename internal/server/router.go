package server

import (
	"gift-core/internal/handler"
	"gift-core/internal/middleware"
	"gift-core/internal/server/routes"
	"gift-core/pkg/auth"
	"gift-core/pkg/logger"
	"gift-core/pkg/monitor"
	"gift-core/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps HTTP 层依赖，由 cmd/gift-server 组装
type Deps struct {
	Tokens       *auth.Manager
	RateLimiter  *middleware.RateLimiter
	Gifts        *handler.GiftHandler
	Withdrawals  *handler.WithdrawHandler
	Verification *handler.VerificationHandler
	Admin        *handler.AdminHandler
	Accounts     *handler.AccountHandler
	// Health 为 nil 时使用不探测存储的默认实现
	Health       *handler.HealthHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(d Deps) (*gin.Engine, error) {
	// 0. 初始化监控指标与自定义校验规则
	monitor.Init()
	if err := validator.Init(); err != nil {
		return nil, err
	}

	// 1. 创建 Engine
	r := gin.New()

	// 2. 注册通用中间件
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	health := d.Health
	if health == nil {
		health = handler.NewHealthHandler(nil)
	}
	r.GET("/health", health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Middleware())
	}
	routes.RegisterPublicRoutes(api, d.Gifts)

	authed := api.Group("", middleware.Authenticate(d.Tokens))
	routes.RegisterUserRoutes(authed, d.Gifts, d.Withdrawals, d.Verification, d.Accounts)
	routes.RegisterAdminRoutes(authed, d.Admin, d.Withdrawals, d.Verification)

	return r, nil
}
