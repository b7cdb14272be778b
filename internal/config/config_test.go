package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluia/assessment-adapter/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODEL",
		"IMAGE_PROVIDER", "IMAGE_MODEL", "OFFICE_BINARY", "OFFICE_TIMEOUT", "RENDER_DPI",
		"LOG_LEVEL", "LOG_FORMAT", "SERVER_HOST", "SERVER_PORT", "LENIENT_MARKERS",
	} {
		t.Setenv(k, "")
	}
	// keep godotenv from picking up a developer .env
	t.Chdir(t.TempDir())
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 300, cfg.Render.AdaptationDPI)
	assert.Equal(t, 150, cfg.Render.IllustrationDPI)
	assert.Equal(t, 60*time.Second, cfg.Office.Timeout)
	assert.False(t, cfg.Protocol.LenientMarkers)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "incluia.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  provider: openrouter
  text_model: google/gemini-2.5-pro
office:
  timeout: 90s
server:
  port: 9000
`), 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("LENIENT_MARKERS", "true")
	t.Setenv("RENDER_DPI", "200")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, cfg.Model.Provider)
	assert.Equal(t, "google/gemini-2.5-pro", cfg.Model.TextModel)
	assert.Equal(t, 90*time.Second, cfg.Office.Timeout)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "or-key", cfg.Model.OpenRouterAPIKey)
	assert.True(t, cfg.Protocol.LenientMarkers)
	assert.Equal(t, 200, cfg.Render.AdaptationDPI)
	assert.Equal(t, "0.0.0.0:9100", cfg.Address())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("LLM_MODEL")
	require.NoError(t, os.WriteFile(".env", []byte("LLM_MODEL=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LLM_MODEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Model.TextModel)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("model: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	t.Setenv("LLM_PROVIDER", "carrier-pigeon")
	_, err = Load("")
	assert.ErrorContains(t, err, "invalid model provider")
}

func TestLoad_MalformedEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OFFICE_TIMEOUT", "60")
	t.Setenv("RENDER_DPI", "300dpi")
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("LENIENT_MARKERS", "sim")

	_, err := Load("")

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
	for _, name := range []string{"OFFICE_TIMEOUT", "RENDER_DPI", "SERVER_PORT", "LENIENT_MARKERS"} {
		assert.ErrorContains(t, err, name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"dpi too high", func(c *Config) { c.Render.AdaptationDPI = 5000 }, "adaptation_dpi"},
		{"zero illustration dpi", func(c *Config) { c.Render.IllustrationDPI = 0 }, "illustration_dpi"},
		{"image provider", func(c *Config) { c.Model.ImageProvider = "paint" }, "invalid image provider"},
		{"office timeout", func(c *Config) { c.Office.Timeout = 0 }, "office timeout"},
		{"port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"log format", func(c *Config) { c.Observability.LogFormat = "xml" }, "invalid log format"},
		{"failure ratio", func(c *Config) { c.Breaker.FailureRatio = 2 }, "failure_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestRequireModelKeys(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.RequireModelKeys()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	cfg.Model.GeminiAPIKey = "g"
	assert.NoError(t, cfg.RequireModelKeys())

	cfg.Model.ImageProvider = ImageProviderOpenAI
	assert.ErrorContains(t, cfg.RequireModelKeys(), "OPENAI_API_KEY")
}
