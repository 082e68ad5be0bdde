package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml plus an optional environment-specific
// overlay (config.<env>.yaml), with environment variables taking precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		if strVal, ok := v.Get(key).(string); ok {
			if strings.Contains(strVal, "${") {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// Cache sizes and retry policies default to the values the service was
// tuned with: APOD 365 entries / 12h, image search 2000 entries / 20m.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "astrodeck"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	applyRetryDefaults(&cfg.NASA.Retry, 8*time.Second, 2, 300*time.Millisecond, 2*time.Second)
	applyRetryDefaults(&cfg.Cloudflare.Retry, 60*time.Second, 1, 250*time.Millisecond, time.Second)
	applyRetryDefaults(&cfg.Enricher.Retry, 8*time.Second, 1, 250*time.Millisecond, time.Second)

	if cfg.NASA.ApodCache.MaxSize == 0 {
		cfg.NASA.ApodCache.MaxSize = 365
	}
	if cfg.NASA.ApodCache.TTL == 0 {
		cfg.NASA.ApodCache.TTL = 12 * time.Hour
	}
	if cfg.NASA.ImageCache.MaxSize == 0 {
		cfg.NASA.ImageCache.MaxSize = 2000
	}
	if cfg.NASA.ImageCache.TTL == 0 {
		cfg.NASA.ImageCache.TTL = 20 * time.Minute
	}

	if cfg.Cloudflare.MaxVocabulary == 0 {
		cfg.Cloudflare.MaxVocabulary = 3
	}
	if cfg.Cloudflare.Temperature == 0 {
		cfg.Cloudflare.Temperature = 0.6
	}
	if cfg.Enricher.BaseURL == "" {
		cfg.Enricher.BaseURL = "http://enricher:8090"
	}
	if cfg.Enricher.MaxVocabulary == 0 {
		cfg.Enricher.MaxVocabulary = 3
	}
	if cfg.Enricher.Temperature == 0 {
		cfg.Enricher.Temperature = 0.6
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = 24 * time.Hour
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyRetryDefaults(r *RetryConfig, timeout time.Duration, retries int, base, max time.Duration) {
	if r.Timeout == 0 {
		r.Timeout = timeout
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = retries
	}
	if r.BaseDelay == 0 {
		r.BaseDelay = base
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = max
	}
	if r.Jitter == 0 {
		r.Jitter = 0.2
	}
}
