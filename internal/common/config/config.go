package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	NASA       NasaConfig       `mapstructure:"nasa"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	Enricher   EnricherConfig   `mapstructure:"enricher"`
	Store      StoreConfig      `mapstructure:"store"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RetryConfig holds the resilience policy applied to one upstream.
type RetryConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	Jitter     float64       `mapstructure:"jitter"`
}

// CacheConfig holds sizing for one memoizing cache namespace.
type CacheConfig struct {
	MaxSize int           `mapstructure:"max_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type NasaConfig struct {
	APIKey        string      `mapstructure:"api_key"`
	ApodBaseURL   string      `mapstructure:"apod_base_url"`
	ImagesBaseURL string      `mapstructure:"images_base_url"`
	Retry         RetryConfig `mapstructure:"retry"`
	ApodCache     CacheConfig `mapstructure:"apod_cache"`
	ImageCache    CacheConfig `mapstructure:"image_cache"`
}

type CloudflareConfig struct {
	BaseURL       string      `mapstructure:"base_url"`
	AccountID     string      `mapstructure:"account_id"`
	Provider      string      `mapstructure:"provider"`
	Vendor        string      `mapstructure:"vendor"`
	Model         string      `mapstructure:"model"`
	APIToken      string      `mapstructure:"api_token"`
	Enabled       bool        `mapstructure:"enabled"`
	MaxVocabulary int         `mapstructure:"max_vocabulary"`
	Temperature   float64     `mapstructure:"temperature"`
	Retry         RetryConfig `mapstructure:"retry"`
}

// ModelID returns the fully qualified model identifier.
func (c CloudflareConfig) ModelID() string {
	return c.Provider + "/" + c.Vendor + "/" + c.Model
}

// Configured reports whether every field needed to reach the API is set.
func (c CloudflareConfig) Configured() bool {
	return c.AccountID != "" && c.Provider != "" && c.Vendor != "" && c.Model != "" && c.APIToken != ""
}

type EnricherConfig struct {
	BaseURL       string      `mapstructure:"base_url"`
	Enabled       bool        `mapstructure:"enabled"`
	MaxVocabulary int         `mapstructure:"max_vocabulary"`
	Temperature   float64     `mapstructure:"temperature"`
	Retry         RetryConfig `mapstructure:"retry"`
}

type StoreConfig struct {
	Backend string        `mapstructure:"backend"` // "memory" or "redis"
	TTL     time.Duration `mapstructure:"ttl"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) Validate() error {
	if c.NASA.ApodBaseURL == "" {
		return fmt.Errorf("nasa.apod_base_url is required")
	}
	if c.NASA.ImagesBaseURL == "" {
		return fmt.Errorf("nasa.images_base_url is required")
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "redis" {
		return fmt.Errorf("store.backend must be \"memory\" or \"redis\", got %q", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when store.backend is redis")
	}
	return nil
}
