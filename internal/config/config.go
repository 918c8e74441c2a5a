// Package config holds the application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lewisedginton/local_places/pkg/config"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// Oracle providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "claude"
)

// AppConfig is the full application configuration, loaded from the
// environment with optional YAML overlay.
type AppConfig struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Session  SessionConfig  `yaml:"session"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Port           int           `yaml:"port" env:"HTTP_PORT" default:"8080"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" default:"120s"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" default:"json"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED" default:"true"`
	Port    int  `yaml:"port" env:"METRICS_PORT" default:"9090"`
}

// DatabaseConfig configures the Postgres pool. URL may be empty at start;
// the chat and places endpoints fail closed until it is set.
type DatabaseConfig struct {
	URL            string `yaml:"url" env:"DATABASE_URL"`
	MaxConns       int    `yaml:"max_conns" env:"DATABASE_MAX_CONNS" default:"10"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START" default:"true"`
}

// LLMConfig selects the oracle backend. The API key matching the provider
// may be empty at start; chat requests fail closed until it is set.
type LLMConfig struct {
	Provider        string `yaml:"provider" env:"LLM_PROVIDER" default:"gemini"`
	Model           string `yaml:"model" env:"LLM_MODEL"`
	GeminiAPIKey    string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	MaxToolRounds   int    `yaml:"max_tool_rounds" env:"LLM_MAX_TOOL_ROUNDS" default:"10"`
}

// SessionConfig controls in-memory chat session retention.
type SessionConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle" env:"SESSION_MAX_IDLE" default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" default:"5m"`
}

// APIKey returns the key matching the configured provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// Validate checks cross-field constraints.
func (c AppConfig) Validate() error {
	var result error

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("http port %d out of range", c.HTTP.Port))
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		result = multierror.Append(result, fmt.Errorf("metrics port %d out of range", c.Metrics.Port))
	}
	if c.Metrics.Enabled && c.Metrics.Port == c.HTTP.Port {
		result = multierror.Append(result, fmt.Errorf("metrics port %d collides with http port", c.Metrics.Port))
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown llm provider %q (want %s, %s or %s)",
			c.LLM.Provider, ProviderGemini, ProviderOpenAI, ProviderAnthropic))
	}
	if c.LLM.MaxToolRounds < 1 {
		result = multierror.Append(result, fmt.Errorf("max tool rounds must be positive"))
	}

	if c.Database.MaxConns < 1 {
		result = multierror.Append(result, fmt.Errorf("database max conns must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		result = multierror.Append(result, fmt.Errorf("session sweep interval must be positive"))
	}

	return result
}

// Load reads configuration from a YAML file (optional) and the
// environment.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := config.FromFile(&cfg, path, true); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoggerConfig converts the logging section for pkg/logger.
func (c AppConfig) LoggerConfig(service string) logger.Config {
	return logger.Config{
		Level:   logger.ParseLevel(c.Logging.Level),
		Format:  c.Logging.Format,
		Service: service,
	}
}

// LogFields summarizes the config for startup logging, secrets elided.
func (c AppConfig) LogFields() []logger.LogField {
	return []logger.LogField{
		logger.IntField("http_port", c.HTTP.Port),
		logger.StringField("llm_provider", c.LLM.Provider),
		logger.BoolField("llm_key_present", c.LLM.APIKey() != ""),
		logger.BoolField("database_configured", c.Database.URL != ""),
		logger.BoolField("metrics_enabled", c.Metrics.Enabled),
	}
}
