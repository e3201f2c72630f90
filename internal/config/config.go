package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Cost     CostConfig     `mapstructure:"cost"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	ReadOnly bool   `mapstructure:"read_only"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
	// Admin surface rate limit, per caller principal
	AdminQPS   float64 `mapstructure:"admin_qps"`
	AdminBurst int     `mapstructure:"admin_burst"`
}

type DatabaseConfig struct {
	DSN                string `mapstructure:"dsn"`
	AuditRetentionDays int    `mapstructure:"audit_retention_days"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// PolicyConfig 策略初始状态：默认阈值与引导授权主体
type PolicyConfig struct {
	DefaultThreshold uint64   `mapstructure:"default_threshold"`
	Authorized       []string `mapstructure:"authorized"` // seeded at startup, never auto-expires
}

// CostConfig parameterizes the fixed cost model. These are cost units, not
// market prices; the estimator is a constant-based strategy by design.
type CostConfig struct {
	StandardCost uint64 `mapstructure:"standard_cost"`
	RelayedCost  uint64 `mapstructure:"relayed_cost"`
	UnitSize     uint64 `mapstructure:"unit_size"`
}

type NotifyConfig struct {
	Channel   string `mapstructure:"channel"`    // redis pub/sub channel
	Stream    string `mapstructure:"stream"`     // redis stream for durable delivery
	StreamMax int64  `mapstructure:"stream_max"` // approximate XADD MAXLEN
	// Hex ECDSA key used to sign outbound envelopes. Empty = unsigned.
	SigningKey string `mapstructure:"signing_key"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. HOOKGATE_REDIS_ADDR
	viper.SetEnvPrefix("hookgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_only", false)
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("auth.admin_qps", 10)
	viper.SetDefault("auth.admin_burst", 20)
	viper.SetDefault("database.audit_retention_days", 30)
	viper.SetDefault("redis.key_prefix", "hookgate")
	viper.SetDefault("policy.default_threshold", 50000)
	viper.SetDefault("cost.standard_cost", 150000)
	viper.SetDefault("cost.relayed_cost", 90000)
	// One whole unit of the venue base currency (18 decimals)
	viper.SetDefault("cost.unit_size", uint64(1_000_000_000_000_000_000))
	viper.SetDefault("notify.channel", "hookgate:events")
	viper.SetDefault("notify.stream", "hookgate:events:stream")
	viper.SetDefault("notify.stream_max", 10000)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
