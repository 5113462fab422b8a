// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogFile           string `mapstructure:"LOG_FILE"`
	LogFileMaxSizeMB  int    `mapstructure:"LOG_FILE_MAX_SIZE_MB"`
	LogFileMaxBackups int    `mapstructure:"LOG_FILE_MAX_BACKUPS"`
	LogFileMaxAgeDays int    `mapstructure:"LOG_FILE_MAX_AGE_DAYS"`

	HTTPAddr       string   `mapstructure:"HTTP_ADDR"`
	DBURL          string   `mapstructure:"DB_URL"`
	MigrationsPath string   `mapstructure:"MIGRATIONS_PATH"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	FrontendURLs   []string `mapstructure:"FRONTEND_URL"`
	GithubAPIURL   string   `mapstructure:"GITHUB_API_URL"`

	AnthropicAPIKey string `mapstructure:"ANTHROPIC_API_KEY"`
	LLMModel        string `mapstructure:"LLM_MODEL"`
	LLMMaxTokens    int64  `mapstructure:"LLM_MAX_TOKENS"`
	LLMConcurrency  int    `mapstructure:"LLM_CONCURRENCY"`

	MaxItemsPerSection int           `mapstructure:"MAX_ITEMS_PER_SECTION"`
	FetchTimeout       time.Duration `mapstructure:"FETCH_TIMEOUT"`
	SummarizeTimeout   time.Duration `mapstructure:"SUMMARIZE_TIMEOUT"`
	AggregateTimeout   time.Duration `mapstructure:"AGGREGATE_TIMEOUT"`
	CachePolicy        string        `mapstructure:"CACHE_POLICY"`
	CacheTTL           time.Duration `mapstructure:"CACHE_TTL"`
	SingleFlight       bool          `mapstructure:"SINGLE_FLIGHT"`

	GroupsDir            string `mapstructure:"GROUPS_DIR"`
	GroupsReloadSchedule string `mapstructure:"GROUPS_RELOAD_SCHEDULE"`
}

var defaults = map[string]any{
	"LOG_LEVEL":              "info",
	"LOG_FILE":               "",
	"LOG_FILE_MAX_SIZE_MB":   100,
	"LOG_FILE_MAX_BACKUPS":   5,
	"LOG_FILE_MAX_AGE_DAYS":  30,
	"HTTP_ADDR":              ":8080",
	"DB_URL":                 "",
	"MIGRATIONS_PATH":        "file://migrations",
	"JWT_SECRET":             "",
	"FRONTEND_URL":           "http://localhost:5173",
	"GITHUB_API_URL":         "",
	"ANTHROPIC_API_KEY":      "",
	"LLM_MODEL":              "claude-3-5-haiku-latest",
	"LLM_MAX_TOKENS":         512,
	"LLM_CONCURRENCY":        8,
	"MAX_ITEMS_PER_SECTION":  10,
	"FETCH_TIMEOUT":          "60s",
	"SUMMARIZE_TIMEOUT":      "90s",
	"AGGREGATE_TIMEOUT":      "90s",
	"CACHE_POLICY":           "uniform",
	"CACHE_TTL":              "1h",
	"SINGLE_FLIGHT":          false,
	"GROUPS_DIR":             "groups",
	"GROUPS_RELOAD_SCHEDULE": "@every 15m",
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	return load(".")
}

func load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(configPath)
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// Validate required fields
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is a required configuration field")
	}
	if c.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is a required configuration field")
	}

	switch c.CachePolicy {
	case "uniform", "tiered":
	default:
		return fmt.Errorf("CACHE_POLICY must be 'uniform' or 'tiered', got %q", c.CachePolicy)
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if c.MaxItemsPerSection <= 0 {
		return errors.New("MAX_ITEMS_PER_SECTION must be positive")
	}
	for name, d := range map[string]time.Duration{
		"FETCH_TIMEOUT":     c.FetchTimeout,
		"SUMMARIZE_TIMEOUT": c.SummarizeTimeout,
		"AGGREGATE_TIMEOUT": c.AggregateTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
