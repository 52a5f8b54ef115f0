// Package config loads LitBook configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Segmentation providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Segmenter LLMConfig
	Annotator LLMConfig
	Search    SearchConfig
	Cache     CacheConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	DataDir     string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds token configuration. The key itself is loaded from
// KeyPath by auth.LoadOrGenerateKey.
type AuthConfig struct {
	KeyPath             string
	AccessTokenDuration time.Duration
}

// LLMConfig configures one LLM-backed feature.
type LLMConfig struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RatePerSec float64
	CacheTTL   time.Duration
}

// Enabled reports whether a remote provider is configured.
func (c LLMConfig) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// SearchConfig holds the bleve index location.
type SearchConfig struct {
	IndexPath string
}

// CacheConfig holds the badger cache location.
type CacheConfig struct {
	Dir string
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("litbook", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := fs.String("data-dir", "", "Base directory for database, index and cache")
	host := fs.String("host", "", "Listen host")
	port := fs.String("port", "", "Listen port (default: 8080)")
	dbPath := fs.String("db-path", "", "SQLite database path (default: {data-dir}/litbook.db)")
	segmenterProvider := fs.String("segmenter", "", "Segmentation provider (none, openai, ollama, gemini)")
	segmenterModel := fs.String("segmenter-model", "", "Segmentation model name")
	annotatorProvider := fs.String("annotator", "", "Annotation provider (none, openai, ollama, gemini)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env is normal. Existing environment variables win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataDir:     getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:        getConfigValue(*host, "SERVER_HOST", ""),
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue("", "CORS_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Auth: AuthConfig{
			KeyPath: getConfigValue("", "AUTH_KEY_PATH", ""),
		},
		Segmenter: LLMConfig{
			Provider:   strings.ToLower(getConfigValue(*segmenterProvider, "SEGMENTER_PROVIDER", ProviderNone)),
			Model:      getConfigValue(*segmenterModel, "SEGMENTER_MODEL", "llama-3.3-70b-versatile"),
			BaseURL:    getConfigValue("", "SEGMENTER_BASE_URL", ""),
			APIKey:     getConfigValue("", "SEGMENTER_API_KEY", ""),
			RatePerSec: getFloatConfigValue("", "SEGMENTER_RATE", 2),
		},
		Annotator: LLMConfig{
			Provider:   strings.ToLower(getConfigValue(*annotatorProvider, "ANNOTATOR_PROVIDER", ProviderNone)),
			Model:      getConfigValue("", "ANNOTATOR_MODEL", "llama-3.3-70b-versatile"),
			BaseURL:    getConfigValue("", "ANNOTATOR_BASE_URL", ""),
			APIKey:     getConfigValue("", "ANNOTATOR_API_KEY", ""),
			RatePerSec: getFloatConfigValue("", "ANNOTATOR_RATE", 1),
		},
		Search: SearchConfig{
			IndexPath: getConfigValue("", "SEARCH_INDEX_PATH", ""),
		},
		Cache: CacheConfig{
			Dir: getConfigValue("", "CACHE_DIR", ""),
		},
	}

	durations := []struct {
		dst *time.Duration
		key string
		def string
	}{
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.AccessTokenDuration, "ACCESS_TOKEN_DURATION", "24h"},
		{&cfg.Segmenter.Timeout, "SEGMENTER_TIMEOUT", "20s"},
		{&cfg.Segmenter.CacheTTL, "SEGMENTER_CACHE_TTL", "720h"},
		{&cfg.Annotator.Timeout, "ANNOTATOR_TIMEOUT", "30s"},
		{&cfg.Annotator.CacheTTL, "ANNOTATOR_CACHE_TTL", "168h"},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.key, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	for name, llm := range map[string]LLMConfig{"segmenter": c.Segmenter, "annotator": c.Annotator} {
		switch llm.Provider {
		case ProviderNone, ProviderOpenAI, ProviderOllama:
		case ProviderGemini:
			if llm.APIKey == "" {
				return fmt.Errorf("%s: gemini provider requires an API key", name)
			}
		default:
			return fmt.Errorf("%s: unknown provider %q", name, llm.Provider)
		}
		if llm.Enabled() && llm.Timeout <= 0 {
			return fmt.Errorf("%s: timeout must be positive", name)
		}
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.App.DataDir, err = expandPath(c.App.DataDir, filepath.Join(home, "LitBook")); err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}

	paths := []struct {
		dst  *string
		name string
	}{
		{&c.Database.Path, "litbook.db"},
		{&c.Search.IndexPath, "search"},
		{&c.Cache.Dir, "cache"},
		{&c.Auth.KeyPath, "auth.key"},
	}
	for _, p := range paths {
		if *p.dst, err = expandPath(*p.dst, filepath.Join(c.App.DataDir, p.name)); err != nil {
			return fmt.Errorf("invalid path for %s: %w", p.name, err)
		}
	}
	return nil
}

// expandPath expands ~ and makes path absolute, using defaultPath when empty.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		path = defaultPath
	}
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// getConfigValue returns the first non-empty value of flag, env var, default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
