// Package config provides configuration loading for IncluIA.
// Supports YAML files, a .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// Text model providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Image model providers.
const (
	ImageProviderGemini = "gemini"
	ImageProviderOpenAI = "openai"
	ImageProviderNone   = "none"
)

// Config holds all configuration for IncluIA.
type Config struct {
	Model         ModelConfig         `yaml:"model"`
	Render        RenderConfig        `yaml:"render"`
	Office        OfficeConfig        `yaml:"office"`
	Protocol      ProtocolConfig      `yaml:"protocol"`
	Readability   ReadabilityConfig   `yaml:"readability"`
	Breaker       BreakerConfig       `yaml:"breaker"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ModelConfig selects the text and image models. Empty model names select
// the provider's default. API keys are only read from the environment.
type ModelConfig struct {
	Provider       string        `yaml:"provider"` // gemini or openrouter
	TextModel      string        `yaml:"text_model"`
	ImageProvider  string        `yaml:"image_provider"` // gemini, openai or none
	ImageModel     string        `yaml:"image_model"`
	ImageBaseURL   string        `yaml:"image_base_url"`
	OpenRouterURL  string        `yaml:"openrouter_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`

	GeminiAPIKey     string `yaml:"-"`
	OpenRouterAPIKey string `yaml:"-"`
	OpenAIAPIKey     string `yaml:"-"`
}

// RenderConfig holds rasterization settings.
type RenderConfig struct {
	AdaptationDPI   int `yaml:"adaptation_dpi"`
	IllustrationDPI int `yaml:"illustration_dpi"`
	JPEGQuality     int `yaml:"jpeg_quality"`
}

// OfficeConfig holds the document converter settings.
type OfficeConfig struct {
	Binary   string        `yaml:"binary"`
	Timeout  time.Duration `yaml:"timeout"`
	TempRoot string        `yaml:"temp_root"`
}

// ProtocolConfig controls how model replies are split.
type ProtocolConfig struct {
	LenientMarkers bool `yaml:"lenient_markers"`
}

// ReadabilityConfig holds readability reporter settings.
type ReadabilityConfig struct {
	MinTokens int `yaml:"min_tokens"`
}

// BreakerConfig holds the model circuit breaker settings.
type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio"`
	OpenTimeout  time.Duration `yaml:"open_timeout"`
	HalfOpenMax  uint32        `yaml:"half_open_max"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Load reads .env (if present), then the YAML file at path (if given),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ConfigError("read .env file", err)
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, domain.ConfigError("invalid environment override", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("validate config", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:       ProviderGemini,
			ImageProvider:  ImageProviderGemini,
			OpenRouterURL:  "https://openrouter.ai/api/v1/chat/completions",
			RequestTimeout: 3 * time.Minute,
			MaxRetries:     3,
		},
		Render: RenderConfig{
			AdaptationDPI:   300,
			IllustrationDPI: 150,
			JPEGQuality:     95,
		},
		Office: OfficeConfig{
			Binary:  "libreoffice",
			Timeout: 60 * time.Second,
		},
		Readability: ReadabilityConfig{
			MinTokens: 20,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MinRequests:  5,
			FailureRatio: 0.6,
			OpenTimeout:  30 * time.Second,
			HalfOpenMax:  1,
		},
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   32 << 20,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "console",
			MetricsEnabled: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("invalid model provider: %s", c.Model.Provider)
	}

	switch c.Model.ImageProvider {
	case ImageProviderGemini, ImageProviderOpenAI, ImageProviderNone:
	default:
		return fmt.Errorf("invalid image provider: %s", c.Model.ImageProvider)
	}

	if c.Model.RequestTimeout <= 0 {
		return fmt.Errorf("model request_timeout must be positive")
	}

	for name, dpi := range map[string]int{"adaptation_dpi": c.Render.AdaptationDPI, "illustration_dpi": c.Render.IllustrationDPI} {
		if dpi < 1 || dpi > 1200 {
			return fmt.Errorf("%s must be between 1 and 1200, got %d", name, dpi)
		}
	}

	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100")
	}

	if c.Office.Binary == "" {
		return fmt.Errorf("office binary must be set")
	}
	if c.Office.Timeout <= 0 {
		return fmt.Errorf("office timeout must be positive")
	}

	if c.Readability.MinTokens < 1 {
		return fmt.Errorf("readability min_tokens must be at least 1")
	}

	if c.Breaker.FailureRatio < 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker failure_ratio must be between 0 and 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Observability.LogFormat)
	}

	return nil
}

// RequireModelKeys checks that the keys of the selected providers are set.
// Commands that never call a model skip it.
func (c *Config) RequireModelKeys() error {
	var missing []string
	switch c.Model.Provider {
	case ProviderGemini:
		if c.Model.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderOpenRouter:
		if c.Model.OpenRouterAPIKey == "" {
			missing = append(missing, "OPENROUTER_API_KEY")
		}
	}
	switch c.Model.ImageProvider {
	case ImageProviderGemini:
		if c.Model.GeminiAPIKey == "" && c.Model.Provider != ProviderGemini {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ImageProviderOpenAI:
		if c.Model.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	}
	if len(missing) > 0 {
		return domain.ConfigError("missing API keys: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
// Malformed values are collected and returned together.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	cfg.Model.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Model.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.Model.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Model.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model.TextModel = v
	}

	if v := os.Getenv("IMAGE_PROVIDER"); v != "" {
		cfg.Model.ImageProvider = strings.ToLower(v)
	}

	if v := os.Getenv("IMAGE_MODEL"); v != "" {
		cfg.Model.ImageModel = v
	}

	if v := os.Getenv("OFFICE_BINARY"); v != "" {
		cfg.Office.Binary = v
	}

	if v := os.Getenv("OFFICE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("OFFICE_TIMEOUT=%q: %w", v, err))
		} else {
			cfg.Office.Timeout = d
		}
	}

	if v := os.Getenv("RENDER_DPI"); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RENDER_DPI=%q: %w", v, err))
		} else {
			cfg.Render.AdaptationDPI = dpi
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SERVER_PORT=%q: %w", v, err))
		} else {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("LENIENT_MARKERS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LENIENT_MARKERS=%q: %w", v, err))
		} else {
			cfg.Protocol.LenientMarkers = b
		}
	}

	return errors.Join(errs...)
}
