package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	DB           DBConfig           `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Ledger       LedgerConfig       `mapstructure:"ledger"`
	Risk         RiskConfig         `mapstructure:"risk"`
	Verification VerificationConfig `mapstructure:"verification"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Relay        RelayConfig        `mapstructure:"relay"`
	Reconcile    ReconcileConfig    `mapstructure:"reconcile"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Seed         SeedConfig         `mapstructure:"seed"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Driver   string `mapstructure:"driver"` // "memory" or "postgres"
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// DSN 返回 gorm postgres 驱动使用的连接串
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

// URL 返回 golang-migrate 使用的 postgres:// 连接串
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis", "kafka" or "none"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

type LedgerConfig struct {
	FeeRate  string `mapstructure:"fee_rate"` // decimal string, e.g. "0.10"
	Currency string `mapstructure:"currency"`
}

type RiskConfig struct {
	Provider        string        `mapstructure:"provider"` // "local" or "gemini"
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ReviewThreshold int64         `mapstructure:"review_threshold"`
	MinimumAmount   int64         `mapstructure:"minimum_amount"`
	RPS             float64       `mapstructure:"rps"`
}

type VerificationConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type RelayConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

type ReconcileConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var Global Config

// Init 加载全局配置，失败直接退出进程
func Init() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load reads config.yaml (if any), environment overrides and defaults into a fresh Config.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 环境变量: ledger.fee_rate -> LEDGER_FEE_RATE
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gift-core")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "gift_user")
	v.SetDefault("db.password", "gift_password")
	v.SetDefault("db.name", "gift_db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.mq_type", "none")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "gift_core_tail")

	v.SetDefault("ledger.fee_rate", "0.10")
	v.SetDefault("ledger.currency", "NGN")

	v.SetDefault("risk.provider", "local")
	v.SetDefault("risk.api_key", "")
	v.SetDefault("risk.model", "gemini-2.5-flash")
	v.SetDefault("risk.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("risk.timeout", 5*time.Second)
	v.SetDefault("risk.review_threshold", 50000)
	v.SetDefault("risk.minimum_amount", 1000)
	v.SetDefault("risk.rps", 2)

	v.SetDefault("verification.cache_ttl", 10*time.Minute)

	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("relay.interval", 500*time.Millisecond)
	v.SetDefault("relay.batch_size", 50)

	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.spec", "@every 5m")

	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)

	v.SetDefault("seed.enabled", true)
}
