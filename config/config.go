package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	Summary       SummaryConfig
	LLM           LLMConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	History       HistoryConfig
	Scanner       ScannerConfig
	Log           LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds product catalog configuration
type OpenFoodFactsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SummaryConfig points clients at the summary relay
type SummaryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds the completion backend used by the relay
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "openai" or "gemini"
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
}

// CacheConfig holds product cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP         int `mapstructure:"per_ip"`        // requests per minute per client IP
	OpenFoodFacts int `mapstructure:"openfoodfacts"` // outbound requests per minute
}

// HistoryConfig selects where scan history is persisted
type HistoryConfig struct {
	Backend string `mapstructure:"backend"` // "memory", "file" or "sqlite"
	Path    string `mapstructure:"path"`
}

// ScannerConfig configures the camera frame spool
type ScannerConfig struct {
	FrameDir     string `mapstructure:"frame_dir"`
	MaxDimension int    `mapstructure:"max_dimension"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/ekoscanner/")

	v.SetEnvPrefix("EKOSCANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "Ekoscanner/1.0")
	v.SetDefault("openfoodfacts.timeout", "15s")

	v.SetDefault("summary.base_url", "http://localhost:8080")
	v.SetDefault("summary.timeout", "30s")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")

	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.openfoodfacts", 100)

	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", "ekoscanner-history.json")

	v.SetDefault("scanner.frame_dir", "")
	v.SetDefault("scanner.max_dimension", 1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm provider must be 'openai' or 'gemini', got: %s", config.LLM.Provider)
	}

	switch config.History.Backend {
	case "memory":
	case "file", "sqlite":
		if config.History.Path == "" {
			return fmt.Errorf("history path is required when history backend is '%s'", config.History.Backend)
		}
	default:
		return fmt.Errorf("history backend must be 'memory', 'file' or 'sqlite', got: %s", config.History.Backend)
	}

	if config.Log.Level != "" {
		if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
			return fmt.Errorf("invalid log level: %s", config.Log.Level)
		}
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.OpenFoodFacts < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}

// RequireLLM checks the settings the summary relay cannot run without.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set EKOSCANNER_LLM_API_KEY)")
	}
	return nil
}

// loadEnvFile loads KEY=VALUE lines from ./.env into the environment.
// Variables that are already set win.
func loadEnvFile() error {
	f, err := os.Open(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
