package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Database:  DatabaseConfig{Path: "/tmp/litbook.db"},
		Segmenter: LLMConfig{Provider: ProviderNone},
		Annotator: LLMConfig{Provider: ProviderNone},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"PRODUCTION", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Providers(t *testing.T) {
	tests := []struct {
		name    string
		llm     LLMConfig
		wantErr bool
	}{
		{"none", LLMConfig{Provider: ProviderNone}, false},
		{"openai", LLMConfig{Provider: ProviderOpenAI, Timeout: time.Second}, false},
		{"ollama", LLMConfig{Provider: ProviderOllama, Timeout: time.Second}, false},
		{"gemini without key", LLMConfig{Provider: ProviderGemini, Timeout: time.Second}, true},
		{"gemini with key", LLMConfig{Provider: ProviderGemini, APIKey: "k", Timeout: time.Second}, false},
		{"zero timeout", LLMConfig{Provider: ProviderOpenAI}, true},
		{"unknown", LLMConfig{Provider: "claude-on-a-toaster"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Segmenter = tt.llm

			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	cfg, err := Load([]string{"-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "litbook.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, "search"), cfg.Search.IndexPath)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.Cache.Dir)
	assert.Equal(t, 20*time.Second, cfg.Segmenter.Timeout)
	assert.False(t, cfg.Segmenter.Enabled())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=7000\nLOG_LEVEL=warn\nSEGMENTER_PROVIDER=ollama\n"), 0o600))

	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "debug")
	t.Cleanup(func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("SEGMENTER_PROVIDER")
	})

	cfg, err := Load([]string{"-env-file", envFile, "-port", "9000"})
	require.NoError(t, err)

	// flag beats .env
	assert.Equal(t, "9000", cfg.Server.Port)
	// env beats .env
	assert.Equal(t, "debug", cfg.Logger.Level)
	// .env beats default
	assert.Equal(t, ProviderOllama, cfg.Segmenter.Provider)
	assert.True(t, cfg.Segmenter.Enabled())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("SEGMENTER_TIMEOUT", "soon")

	_, err := Load([]string{"-env-file", "/nonexistent/.env"})
	assert.ErrorContains(t, err, "SEGMENTER_TIMEOUT")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)

	got, err = expandPath("", "/var/lib/litbook")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/litbook", got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitList(""))
}
