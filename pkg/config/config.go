// Package config provides TOML configuration loading with environment
// variable overrides and default values for a zero-config start.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the exchangecore process.
type Config struct {
	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	Venue     VenueConfig     `mapstructure:"venue"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// HTTPConfig is the client-facing HTTP listener.
type HTTPConfig struct {
	Host         string `mapstructure:"host" default:"0.0.0.0"`
	Port         int    `mapstructure:"port" default:"8080"`
	ReadTimeout  int    `mapstructure:"read_timeout" default:"30"`
	WriteTimeout int    `mapstructure:"write_timeout" default:"30"`
}

// VenueConfig is the downstream venue gRPC client. An empty Target selects
// pure mode: no venue sink is wired and the process is the sole venue.
type VenueConfig struct {
	Target         string `mapstructure:"target"`
	DialTimeout    int    `mapstructure:"dial_timeout" default:"5"`
	KeepaliveSecs  int    `mapstructure:"keepalive_secs" default:"30"`
	MaxRetries     int    `mapstructure:"max_retries" default:"3"`
	RetryBackoffMs int    `mapstructure:"retry_backoff_ms" default:"200"`
}

// RedisConfig backs the market-data reference-quote cache.
type RedisConfig struct {
	Host        string `mapstructure:"host" default:"localhost"`
	Port        int    `mapstructure:"port" default:"6379"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db" default:"0"`
	MaxPoolSize int    `mapstructure:"max_pool_size" default:"10"`
	ConnTimeout int    `mapstructure:"conn_timeout" default:"5"`
}

// KafkaConfig feeds the market-data ingestion consumer.
type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	Topic          string   `mapstructure:"topic" default:"market-data"`
	GroupID        string   `mapstructure:"group_id" default:"exchangecore"`
	SessionTimeout int      `mapstructure:"session_timeout" default:"10"`
}

// LoggerConfig drives the slog handler.
type LoggerConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"json"`
	Output     string `mapstructure:"output" default:"stdout"`
	FilePath   string `mapstructure:"file_path" default:"logs/app.log"`
	MaxSize    int    `mapstructure:"max_size" default:"100"`
	MaxBackups int    `mapstructure:"max_backups" default:"10"`
	MaxAge     int    `mapstructure:"max_age" default:"30"`
	Compress   bool   `mapstructure:"compress" default:"true"`
	WithCaller bool   `mapstructure:"with_caller" default:"true"`
}

// RateLimitConfig bounds the client-facing order/cancel endpoints,
// enforced per client IP via the Redis token bucket in pkg/ratelimit.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
	QPS     int  `mapstructure:"qps" default:"100"`
	Burst   int  `mapstructure:"burst" default:"200"`
}

// MetricsConfig is the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" default:"true"`
	Port    int    `mapstructure:"port" default:"9090"`
	Path    string `mapstructure:"path" default:"/metrics"`
}

// FrontMode reports whether a venue target is configured.
func (c *Config) FrontMode() bool {
	return c.Venue.Target != ""
}

// Load reads configPath if present and falls back to defaults otherwise,
// so the process starts with zero config file present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	_ = v.ReadInConfig()

	v.SetEnvPrefix("EXCHANGECORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate enforces the invariants Load depends on.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		c.ServiceName = "exchangecore"
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "exchangecore")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("venue.dial_timeout", 5)
	v.SetDefault("venue.keepalive_secs", 30)
	v.SetDefault("venue.max_retries", 3)
	v.SetDefault("venue.retry_backoff_ms", 200)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)

	v.SetDefault("kafka.topic", "market-data")
	v.SetDefault("kafka.group_id", "exchangecore")
	v.SetDefault("kafka.session_timeout", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.qps", 100)
	v.SetDefault("rate_limit.burst", 200)
}
