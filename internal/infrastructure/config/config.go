// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	App             AppConfig             `mapstructure:"app"`
	Remote          RemoteConfig          `mapstructure:"remote"`
	Storage         StorageConfig         `mapstructure:"storage"`
	Catalog         CatalogConfig         `mapstructure:"catalog"`
	Personalization PersonalizationConfig `mapstructure:"personalization"`
	Monitoring      MonitoringConfig      `mapstructure:"monitoring"`
	Stub            StubConfig            `mapstructure:"stub"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string   `mapstructure:"name" validate:"required"`
	Version     string   `mapstructure:"version"`
	Environment string   `mapstructure:"environment" validate:"oneof=development staging production test"`
	Debug       bool     `mapstructure:"debug"`
	LogLevel    string   `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string   `mapstructure:"log_format" validate:"oneof=json console"`
	LogOutputs  []string `mapstructure:"log_outputs"`
}

// RemoteConfig describes the personalization service. The like, ingredient
// and legacy recipe endpoints live on BaseURL; search and recommendations on
// APIBaseURL.
type RemoteConfig struct {
	BaseURL       string               `mapstructure:"base_url" validate:"required,url"`
	APIBaseURL    string               `mapstructure:"api_base_url" validate:"required,url"`
	Timeout       time.Duration        `mapstructure:"timeout" validate:"gt=0"`
	RatePerSecond float64              `mapstructure:"rate_per_second" validate:"gte=0"`
	Burst         int                  `mapstructure:"burst" validate:"gte=1"`
	Breaker       CircuitBreakerConfig `mapstructure:"breaker"`
}

// CircuitBreakerConfig configures the breaker wrapped around remote calls
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold" validate:"gte=1"`
}

// StorageConfig selects the durable key-value store
type StorageConfig struct {
	Driver string      `mapstructure:"driver" validate:"oneof=sqlite badger redis memory"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database" validate:"gte=0"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CatalogConfig points at the bundled catalog. An empty path uses the
// catalog compiled into the binary.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// PersonalizationConfig parametrizes the search and recommendation
// orchestrators
type PersonalizationConfig struct {
	PageSize       int      `mapstructure:"page_size" validate:"gte=1"`
	Threshold      int      `mapstructure:"threshold" validate:"gte=1"`
	InitialReveal  int      `mapstructure:"initial_reveal" validate:"gte=1"`
	RevealStep     int      `mapstructure:"reveal_step" validate:"gte=1"`
	Tags           []string `mapstructure:"tags" validate:"dive,required"`
	LegacyFallback bool     `mapstructure:"legacy_fallback"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// StubConfig configures the local stub personalization server. It serves
// every endpoint on one address, so both remote base URLs point at it.
type StubConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// DefaultTags is the tag bar of the browsing screen
var DefaultTags = []string{
	"All", "Breakfast", "Sweet", "Vegan", "Dessert",
	"Inexpensive", "Appetizers", "Dietary", "Gluten-free",
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("recipebook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.recipebook")
	}

	v.SetEnvPrefix("RECIPEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, the defaults cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Recipebook")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("remote.base_url", "http://localhost:3000")
	v.SetDefault("remote.api_base_url", "http://localhost:5000")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("remote.rate_per_second", 20)
	v.SetDefault("remote.burst", 5)
	v.SetDefault("remote.breaker.enabled", true)
	v.SetDefault("remote.breaker.max_requests", 1)
	v.SetDefault("remote.breaker.interval", "60s")
	v.SetDefault("remote.breaker.timeout", "30s")
	v.SetDefault("remote.breaker.failure_threshold", 5)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "recipebook.db")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.database", 0)
	v.SetDefault("storage.redis.key_prefix", "recipebook:")
	v.SetDefault("storage.redis.max_retries", 3)
	v.SetDefault("storage.redis.pool_size", 4)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	v.SetDefault("catalog.path", "")

	v.SetDefault("personalization.page_size", 10)
	v.SetDefault("personalization.threshold", 5)
	v.SetDefault("personalization.initial_reveal", 5)
	v.SetDefault("personalization.reveal_step", 3)
	v.SetDefault("personalization.tags", DefaultTags)
	v.SetDefault("personalization.legacy_fallback", false)

	v.SetDefault("monitoring.enable_metrics", true)

	v.SetDefault("stub.addr", ":3000")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Storage.Driver != "memory" && c.Storage.Driver != "redis" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
	}

	if c.Storage.Driver == "redis" && c.Storage.Redis.Host == "" {
		return fmt.Errorf("storage.redis.host is required for the redis driver")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// RedisAddr returns the host:port address of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Storage.Redis.Host, c.Storage.Redis.Port)
}
