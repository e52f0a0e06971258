package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "CORS_ALLOWED_ORIGINS", "LLM_PROVIDER", "ARK_STREAM",
	"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model", "ARK_BASE_URL", "ARK_REGION",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"EXTRACTION_TEMPERATURE", "EXTRACTION_MAX_TOKENS", "RESPONSE_MAX_TOKENS",
	"LOG_LEVEL", "MEMORY_CONFIG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.True(t, cfg.AI.StreamResponse)
	assert.InDelta(t, 0.3, cfg.AI.ExtractionTemperature, 1e-6)
	assert.Equal(t, 4096, cfg.AI.ExtractionMaxTokens)
	assert.Equal(t, 1024, cfg.AI.ResponseMaxTokens)
	assert.Equal(t, log.InfoLevel, cfg.Log.Level)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("ARK_STREAM", "false")
	t.Setenv("RESPONSE_MAX_TOKENS", "512")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
	assert.False(t, cfg.AI.StreamResponse)
	assert.Equal(t, 512, cfg.AI.ResponseMaxTokens)
	assert.Equal(t, log.DebugLevel, cfg.Log.Level)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "memory.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "7000"
allowed_origins = ["http://localhost:5173"]

[ai]
stream = false

[ai.ark]
api_key = "file-key"
model = "file-model"

[ai.extraction]
temperature = 0.2
max_tokens = 2048

[log]
level = "warn"
`), 0o600))
	t.Setenv("Model", "env-model")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.AI.StreamResponse)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "env-model", cfg.AI.Model)
	assert.InDelta(t, 0.2, cfg.AI.ExtractionTemperature, 1e-6)
	assert.Equal(t, 2048, cfg.AI.ExtractionMaxTokens)
	assert.Equal(t, log.WarnLevel, cfg.Log.Level)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"port":        {"PORT", "80 80"},
		"provider":    {"LLM_PROVIDER", "gemini"},
		"stream":      {"ARK_STREAM", "sometimes"},
		"temperature": {"EXTRACTION_TEMPERATURE", "0"},
		"tokens":      {"EXTRACTION_MAX_TOKENS", "many"},
		"log level":   {"LOG_LEVEL", "loud"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
