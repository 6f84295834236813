package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the odds gateway
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// UpstreamConfig holds the odds provider endpoints and credentials
type UpstreamConfig struct {
	BaseURL      string            `mapstructure:"base_url"`
	SportPath    string            `mapstructure:"sport_path"` // fmt template, receives the sport type id
	EventPath    string            `mapstructure:"event_path"` // fmt template, receives type id and event id
	APIKey       string            `mapstructure:"api_key"`
	APIKeyHeader string            `mapstructure:"api_key_header"`
	Headers      map[string]string `mapstructure:"headers"`
	Timeout      time.Duration     `mapstructure:"timeout"`
}

// CacheConfig holds freshness windows and the store backend
type CacheConfig struct {
	Backend     string        `mapstructure:"backend"` // memory, redis
	SportWindow time.Duration `mapstructure:"sport_window"`
	EventWindow time.Duration `mapstructure:"event_window"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// StreamConfig holds subscription cadences
type StreamConfig struct {
	SportInterval time.Duration `mapstructure:"sport_interval"`
	EventInterval time.Duration `mapstructure:"event_interval"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
}

// AuthConfig holds token and user directory settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	MaxDevices int           `mapstructure:"max_devices"`
	UsersFile  string        `mapstructure:"users_file"`
}

// KafkaConfig holds snapshot publishing configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"` // Topic to publish snapshots to
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("upstream.base_url", "https://api.odds-provider.example")
	v.SetDefault("upstream.sport_path", "/markets?eventTypeId=%s")
	v.SetDefault("upstream.event_path", "/markets?eventTypeId=%s&eventId=%s")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.api_key_header", "X-Api-Key")
	v.SetDefault("upstream.headers", map[string]string{"Accept": "application/json"})
	v.SetDefault("upstream.timeout", 5*time.Second)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sport_window", 5*time.Minute)
	v.SetDefault("cache.event_window", 10*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "odds-gateway")

	v.SetDefault("stream.sport_interval", 5*time.Second)
	v.SetDefault("stream.event_interval", 1*time.Second)
	v.SetDefault("stream.fetch_timeout", 5*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.max_devices", 2)
	v.SetDefault("auth.users_file", "data/users.json")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "odds_snapshots")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ODDS_GATEWAY")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache backend %q: expected memory or redis", c.Cache.Backend)
	}
	if c.Cache.SportWindow <= 0 || c.Cache.EventWindow <= 0 {
		return fmt.Errorf("cache windows must be positive")
	}
	if c.Stream.SportInterval <= 0 || c.Stream.EventInterval <= 0 {
		return fmt.Errorf("stream intervals must be positive")
	}
	if c.Auth.MaxDevices < 1 {
		return fmt.Errorf("auth.max_devices must be at least 1")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	return nil
}

// SportURL builds the upstream URL for a sport type id
func (u *UpstreamConfig) SportURL(typeID string) string {
	return u.BaseURL + fmt.Sprintf(u.SportPath, url.QueryEscape(typeID))
}

// EventURL builds the upstream URL for a single event
func (u *UpstreamConfig) EventURL(typeID, eventID string) string {
	return u.BaseURL + fmt.Sprintf(u.EventPath, url.QueryEscape(typeID), url.QueryEscape(eventID))
}
