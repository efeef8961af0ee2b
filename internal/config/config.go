// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./config.yaml or ~/.ragchat/config.yaml)
//  3. Default values
//
// Error handling uses sentinel errors so callers can check with errors.Is().
// Sensitive fields (API keys) are masked in MarshalJSON and String.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAnthropicKey indicates ANTHROPIC_API_KEY is not set.
	ErrMissingAnthropicKey = errors.New("missing Anthropic API key")

	// ErrMissingGeminiKey indicates GEMINI_API_KEY is not set.
	ErrMissingGeminiKey = errors.New("missing Gemini API key")

	// ErrInvalidChunking indicates chunk size/overlap values are out of range.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidMaxResults indicates max_results is out of range.
	ErrInvalidMaxResults = errors.New("invalid max results")

	// ErrInvalidMaxHistory indicates max_history is out of range.
	ErrInvalidMaxHistory = errors.New("invalid max history")

	// ErrInvalidMaxToolRounds indicates max_tool_rounds is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")
)

// Defaults mirroring the course chatbot's tuning.
const (
	// DefaultAnthropicModel is the Claude model used for answer generation.
	DefaultAnthropicModel = "claude-sonnet-4-20250514"

	// DefaultEmbedderModel is the Gemini embedding model.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultChunkSize is the maximum chunk size in characters.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the chunk overlap budget in characters.
	DefaultChunkOverlap = 100

	// DefaultMaxResults is the number of search results returned per query.
	DefaultMaxResults = 5

	// DefaultMaxHistory is the number of conversation exchanges remembered
	// per session (2 messages per exchange).
	DefaultMaxHistory = 2

	// DefaultMaxToolRounds caps tool-calling rounds per query.
	DefaultMaxToolRounds = 2
)

// Config stores application configuration.
// SECURITY: API keys are masked in MarshalJSON; update it when adding
// new sensitive fields.
type Config struct {
	// Generation
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" json:"anthropic_api_key"` // SENSITIVE: masked in MarshalJSON
	AnthropicModel  string `mapstructure:"anthropic_model" json:"anthropic_model"`
	MaxToolRounds   int    `mapstructure:"max_tool_rounds" json:"max_tool_rounds"`

	// Embeddings
	GeminiAPIKey  string  `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`
	EmbedRPS      float64 `mapstructure:"embed_rps" json:"embed_rps"`

	// Ingestion and retrieval
	DocsDir      string `mapstructure:"docs_dir" json:"docs_dir"`
	ChunkSize    int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	MaxResults   int    `mapstructure:"max_results" json:"max_results"`

	// Sessions
	MaxHistory int `mapstructure:"max_history" json:"max_history"`

	// Server
	Addr string `mapstructure:"addr" json:"addr"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".ragchat"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error: defaults + env suffice.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic_model", DefaultAnthropicModel)
	v.SetDefault("max_tool_rounds", DefaultMaxToolRounds)

	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("embed_rps", 5.0)

	v.SetDefault("docs_dir", "./docs")
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("max_results", DefaultMaxResults)

	v.SetDefault("max_history", DefaultMaxHistory)

	v.SetDefault("addr", "127.0.0.1:8000")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variables explicitly.
// Only the two provider secrets plus a handful of operational overrides.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			// Hardcoded keys cannot fail to bind; a panic here is a bug.
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("anthropic_api_key", "ANTHROPIC_API_KEY")
	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("anthropic_model", "RAGCHAT_ANTHROPIC_MODEL")
	mustBind("embedder_model", "RAGCHAT_EMBEDDER_MODEL")
	mustBind("docs_dir", "RAGCHAT_DOCS_DIR")
	mustBind("addr", "RAGCHAT_ADDR")
	mustBind("log_level", "RAGCHAT_LOG_LEVEL")
}

// Validate performs fail-fast range and presence checks.
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingAnthropicKey)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingGeminiKey)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size)", ErrInvalidChunking, c.ChunkOverlap)
	}
	if c.MaxResults <= 0 || c.MaxResults > 100 {
		return fmt.Errorf("%w: max_results %d must be in [1, 100]", ErrInvalidMaxResults, c.MaxResults)
	}
	if c.MaxHistory < 0 || c.MaxHistory > 1000 {
		return fmt.Errorf("%w: max_history %d must be in [0, 1000]", ErrInvalidMaxHistory, c.MaxHistory)
	}
	if c.MaxToolRounds <= 0 || c.MaxToolRounds > 10 {
		return fmt.Errorf("%w: max_tool_rounds %d must be in [1, 10]", ErrInvalidMaxToolRounds, c.MaxToolRounds)
	}
	return nil
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Secrets of 8 characters or
// fewer are fully masked; longer ones keep the first and last 2 characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.AnthropicAPIKey = maskSecret(a.AnthropicAPIKey)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
