package config

import (
	"fmt"
	"strings"
	"time"

	"token-guard/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	configName = "config.server"
	envPrefix  = "TOKEN_GUARD"
)

// Config 定义整个配置的结构
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Server      ServerConfig      `mapstructure:"server"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Helius      HeliusConfig      `mapstructure:"helius"`
	DexScreener DexScreenerConfig `mapstructure:"dexscreener"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type ServerConfig struct {
	Addr                string `mapstructure:"addr"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// RedisConfig Redis 配置，address 为空时不启用共享缓存和分布式限流
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig PostgreSQL 配置，dsn 为空时不落库
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig Kafka 配置，brokers 为空时不推送
type KafkaConfig struct {
	Brokers     string `mapstructure:"brokers"`
	TopicReport string `mapstructure:"topic_report"`
}

// HeliusConfig 链上索引 RPC
type HeliusConfig struct {
	RpcURL    string `mapstructure:"rpc_url"`
	APIKey    string `mapstructure:"api_key"`
	RateLimit int    `mapstructure:"rate_limit"` // 每分钟请求次数
	Timeout   int    `mapstructure:"timeout"`    // 秒
}

// Endpoint 拼上 api-key 的完整 RPC 地址
func (c HeliusConfig) Endpoint() string {
	if c.APIKey == "" {
		return c.RpcURL
	}
	sep := "?"
	if strings.Contains(c.RpcURL, "?") {
		sep = "&"
	}
	return c.RpcURL + sep + "api-key=" + c.APIKey
}

type DexScreenerConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	RateLimit int    `mapstructure:"rate_limit"`
	Timeout   int    `mapstructure:"timeout"`
}

type CacheConfig struct {
	TTLSeconds         int `mapstructure:"ttl_seconds"`
	LoadTimeoutSeconds int `mapstructure:"load_timeout_seconds"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c CacheConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

type RateLimitConfig struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// ArchiveConfig 报告归档，retention_days<=0 时不清理历史
type ArchiveConfig struct {
	Enable                 bool `mapstructure:"enable"`
	BatchSize              int  `mapstructure:"batch_size"`
	FlushIntervalMs        int  `mapstructure:"flush_interval_ms"`
	Workers                int  `mapstructure:"workers"`
	RetentionDays          int  `mapstructure:"retention_days"`
	CleanupIntervalMinutes int  `mapstructure:"cleanup_interval_minutes"`
}

func (c ArchiveConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func (c ArchiveConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("monitor.prometheus_addr", ":9090")
	v.SetDefault("kafka.topic_report", "token_guard.report")
	v.SetDefault("helius.rpc_url", "https://mainnet.helius-rpc.com/")
	v.SetDefault("helius.rate_limit", 600)
	v.SetDefault("helius.timeout", 10)
	v.SetDefault("dexscreener.base_url", "https://api.dexscreener.com/tokens/v1/solana")
	v.SetDefault("dexscreener.rate_limit", 300)
	v.SetDefault("dexscreener.timeout", 5)
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.load_timeout_seconds", 20)
	v.SetDefault("rate_limit.limit", 10)
	v.SetDefault("rate_limit.window_seconds", 10)
	v.SetDefault("archive.batch_size", 200)
	v.SetDefault("archive.flush_interval_ms", 1000)
	v.SetDefault("archive.workers", 1)
	v.SetDefault("archive.retention_days", 30)
	v.SetDefault("archive.cleanup_interval_minutes", 60)
}

// InitConfig 读取 ./config/config.server.yaml，失败直接 panic
func InitConfig() Config {
	cfg, err := LoadConfig(viper.GetViper(), "./config/")
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return cfg
}

// LoadConfig 从指定目录加载配置，环境变量 TOKEN_GUARD_<SECTION>_<KEY> 可覆盖
func LoadConfig(v *viper.Viper, dir string) (Config, error) {
	var config Config

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return config, err
	}

	// AllSettings 会合并默认值、文件和环境变量
	if err := mapstructure.Decode(v.AllSettings(), &config); err != nil {
		return config, err
	}
	return config, nil
}

// WatchConfig 配置文件变更时热更新日志级别，其余配置需重启生效
func WatchConfig(config *Config, tl *zap.Logger) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := LoadConfig(viper.GetViper(), "./config/")
		if err != nil {
			tl.Warn("reload config failed", zap.String("file", e.Name), zap.Error(err))
			return
		}
		config.Log.Level = newConfig.Log.Level
		logger.SetLogLevel(newConfig.Log.Level)
	})
}
