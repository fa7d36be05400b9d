package config

import (
	"fmt"
	"strings"

	"github.com/cangchu-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
	Fulfillment FulfillmentConfig `mapstructure:"fulfillment"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 运营端 JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// FulfillmentConfig 履约核心配置
type FulfillmentConfig struct {
	Order     OrderConfig     `mapstructure:"order"`
	Selector  SelectorWeights `mapstructure:"selector"`
	Cost      CostConfig      `mapstructure:"cost"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// OrderConfig 履约订单配置
type OrderConfig struct {
	PendingExpireMinutes int `mapstructure:"pending_expire_minutes"` // 待确认订单超时取消时长（0 表示不超时）
}

// SelectorWeights 选仓评分权重配置
type SelectorWeights struct {
	RegionMatchBonus  float64 `mapstructure:"region_match_bonus"`
	CityMatchBonus    float64 `mapstructure:"city_match_bonus"`
	AccuracyWeight    float64 `mapstructure:"accuracy_weight"`
	PunctualityWeight float64 `mapstructure:"punctuality_weight"`
	HeadroomWeight    float64 `mapstructure:"headroom_weight"`
	SameDayBonus      float64 `mapstructure:"same_day_bonus"`
	ExpressBonus      float64 `mapstructure:"express_bonus"`
}

// CostConfig 履约成本费率配置
type CostConfig struct {
	HandlingPerItem   string `mapstructure:"handling_per_item"`   // 单件拣货处理费
	PackagingPerKg    string `mapstructure:"packaging_per_kg"`    // 按重量计的包装费
	ShippingBase      string `mapstructure:"shipping_base"`       // 运费起步价
	ShippingPerKg     string `mapstructure:"shipping_per_kg"`     // 按重量计的运费
	ExpressMultiplier string `mapstructure:"express_multiplier"`  // 加急运费系数
	SameDayMultiplier string `mapstructure:"same_day_multiplier"` // 当日达运费系数
	CrossBorderExtra  string `mapstructure:"cross_border_extra"`  // 跨国附加费
}

// InventoryConfig 库存配置
type InventoryConfig struct {
	DefaultReorderThreshold int `mapstructure:"default_reorder_threshold"`
}

// AnalyticsConfig 统计分析配置
type AnalyticsConfig struct {
	CapacityHighWaterPercent  float64 `mapstructure:"capacity_high_water_percent"`
	AccuracyTargetPercent     float64 `mapstructure:"accuracy_target_percent"`
	ReportCacheTTLSeconds     int     `mapstructure:"report_cache_ttl_seconds"`
	MetricsRefreshIntervalMin int     `mapstructure:"metrics_refresh_interval_minutes"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "cangchu.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/cangchu.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 24)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "cc")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.login_rate_limit.window_seconds", 300)
	viper.SetDefault("security.login_rate_limit.max_attempts", 5)
	viper.SetDefault("security.login_rate_limit.block_seconds", 900)
	viper.SetDefault("fulfillment.order.pending_expire_minutes", 0)
	viper.SetDefault("fulfillment.selector.region_match_bonus", 50.0)
	viper.SetDefault("fulfillment.selector.city_match_bonus", 25.0)
	viper.SetDefault("fulfillment.selector.accuracy_weight", 0.3)
	viper.SetDefault("fulfillment.selector.punctuality_weight", 0.3)
	viper.SetDefault("fulfillment.selector.headroom_weight", 0.2)
	viper.SetDefault("fulfillment.selector.same_day_bonus", 20.0)
	viper.SetDefault("fulfillment.selector.express_bonus", 10.0)
	viper.SetDefault("fulfillment.cost.handling_per_item", "1.50")
	viper.SetDefault("fulfillment.cost.packaging_per_kg", "0.80")
	viper.SetDefault("fulfillment.cost.shipping_base", "6.00")
	viper.SetDefault("fulfillment.cost.shipping_per_kg", "2.40")
	viper.SetDefault("fulfillment.cost.express_multiplier", "1.5")
	viper.SetDefault("fulfillment.cost.same_day_multiplier", "2.0")
	viper.SetDefault("fulfillment.cost.cross_border_extra", "15.00")
	viper.SetDefault("fulfillment.inventory.default_reorder_threshold", 10)
	viper.SetDefault("fulfillment.analytics.capacity_high_water_percent", 90.0)
	viper.SetDefault("fulfillment.analytics.accuracy_target_percent", 95.0)
	viper.SetDefault("fulfillment.analytics.report_cache_ttl_seconds", 60)
	viper.SetDefault("fulfillment.analytics.metrics_refresh_interval_minutes", 10)

	// 环境变量支持（server.port -> SERVER_PORT）
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}
