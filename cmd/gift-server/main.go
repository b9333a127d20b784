package main

import (
	"context"
	"os"
	"time"

	"gift-core/internal/advisor"
	"gift-core/internal/handler"
	"gift-core/internal/middleware"
	"gift-core/internal/model"
	"gift-core/internal/server"
	"gift-core/internal/service"
	"gift-core/internal/service/mq"
	"gift-core/internal/store"
	"gift-core/pkg/auth"
	"gift-core/pkg/cache"
	"gift-core/pkg/clock"
	"gift-core/pkg/config"
	"gift-core/pkg/database"
	"gift-core/pkg/logger"
	"gift-core/pkg/safe_random"
	"gift-core/pkg/utils/lock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 0. 初始化 Config
	config.Init()
	cfg := config.Global

	// 1. 初始化 Logger
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 存储层
	st := openStore(cfg)
	defer st.Close()

	// 3. 演示数据
	if cfg.Seed.Enabled {
		seeded, err := st.Seeded(ctx)
		if err != nil {
			logger.Fatal("检查种子数据失败", zap.Error(err))
		}
		if !seeded {
			if err := st.Seed(ctx, model.DefaultSeed(time.Now().UTC())); err != nil {
				logger.Fatal("写入种子数据失败", zap.Error(err))
			}
			logger.Info("种子数据写入完成")
		}
	}

	// 4. 连接 Redis (可选)
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		var err error
		rdb, err = database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		defer rdb.Close()
	}

	// 5. 初始化消息队列
	producer := openProducer(cfg, rdb)
	defer producer.Close()

	// 6. 启动消息中继服务
	relay := service.NewRelayService(st, producer, clock.System{}, cfg.Relay.Interval, cfg.Relay.BatchSize)
	go relay.Start(ctx)

	// 7. 定时对账
	if cfg.Reconcile.Enabled {
		var locker lock.DistributedLock = lock.NewLocalLock()
		if rdb != nil {
			locker = lock.NewRedisLock(rdb, instanceID())
		}
		reconciler := service.NewReconcileService(st, locker, cfg.Reconcile.Spec)
		if err := reconciler.Start(); err != nil {
			logger.Fatal("对账任务启动失败", zap.Error(err))
		}
		defer reconciler.Stop()
	}

	// 8. 外部顾问
	adv := openAdvisor(cfg, rdb)

	// 9. 业务服务
	feeRate, err := service.ParseFeeRate(cfg.Ledger.FeeRate)
	if err != nil {
		logger.Fatal("手续费率配置无效", zap.Error(err))
	}
	sysClock := clock.System{}
	gifts := service.NewGiftService(st, sysClock, feeRate)
	withdrawals := service.NewWithdrawService(st, sysClock, adv, cfg.Risk.Timeout)
	verification := service.NewVerificationService(st, sysClock, adv, cfg.Risk.Timeout)
	admin := service.NewAdminService(st, sysClock)
	query := service.NewQueryService(st)

	// 10. HTTP Router
	r, err := server.NewHTTPRouter(server.Deps{
		Tokens:       auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		RateLimiter:  middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Gifts:        handler.NewGiftHandler(gifts, query),
		Withdrawals:  handler.NewWithdrawHandler(withdrawals, query),
		Verification: handler.NewVerificationHandler(verification),
		Admin:        handler.NewAdminHandler(admin, query),
		Accounts:     handler.NewAccountHandler(query),
		Health:       handler.NewHealthHandler(query),
	})
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	logger.Info("服务配置",
		zap.String("store", cfg.DB.Driver),
		zap.String("mq", cfg.Redis.MQType),
		zap.String("advisor", cfg.Risk.Provider),
		zap.String("fee_rate", feeRate.String()))

	// 11. 运行 (阻塞)
	server.New(server.Config{HttpPort: cfg.App.HttpPort}, r).Run(ctx)

	logger.Info("系统已退出")
}

func openStore(cfg config.Config) store.Store {
	if cfg.DB.Driver != "postgres" {
		logger.Info("使用内存存储")
		return store.NewMemoryStore()
	}

	db, err := database.ConnectPostgres(cfg.DB.DSN(), cfg.App.Env == "development")
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	if cfg.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}
	return store.NewGormStore(db)
}

func openProducer(cfg config.Config, rdb *redis.Client) mq.Producer {
	switch cfg.Redis.MQType {
	case "kafka":
		logger.Info("使用 Kafka 作为消息队列...")
		return mq.NewKafkaProducer(cfg.Kafka.Brokers)
	case "redis":
		if rdb == nil {
			logger.Fatal("redis.mq_type=redis 需要 redis.enabled=true")
		}
		logger.Info("使用 Redis Streams 作为消息队列...")
		return mq.NewRedisProducer(rdb, 10000)
	default:
		logger.Info("未配置消息队列，事件仅写入日志")
		return mq.NewLogProducer()
	}
}

func openAdvisor(cfg config.Config, rdb *redis.Client) advisor.Advisor {
	policy := advisor.NewPolicyAdvisor(cfg.Risk.ReviewThreshold, cfg.Risk.MinimumAmount)
	if cfg.Risk.Provider != "gemini" {
		return policy
	}

	gemini, err := advisor.NewGeminiAdvisor(advisor.GeminiOptions{
		APIKey:  cfg.Risk.APIKey,
		Model:   cfg.Risk.Model,
		BaseURL: cfg.Risk.BaseURL,
		RPS:     cfg.Risk.RPS,
		Policy:  policy,
	})
	if err != nil {
		logger.Warn("Gemini 顾问不可用，回退到本地规则", zap.Error(err))
		return policy
	}

	var c cache.Cache = cache.NewMemoryCache(cfg.Verification.CacheTTL, 2*cfg.Verification.CacheTTL)
	if rdb != nil {
		c = cache.NewMultiLevelCache(c, cache.NewRedisCache(rdb, "gift:advisor:"))
	}
	return advisor.NewCachedAdvisor(gemini, c, cfg.Verification.CacheTTL)
}

// instanceID 分布式锁持有者标识: hostname + 随机后缀，同机多进程也不会冲突
func instanceID() string {
	host, _ := os.Hostname()
	suffix, err := safe_random.GenerateRandomHexString(4)
	if err != nil {
		return host
	}
	return host + "-" + suffix
}
