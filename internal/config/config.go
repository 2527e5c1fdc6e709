// Package config loads prdwiz settings from .prdwiz/config.yaml, .env and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jywlabs/prdwiz/internal/llm"
	"github.com/jywlabs/prdwiz/internal/template"
)

// Environment variables read by Load.
const (
	EnvAPIKey          = "OPENAI_API_KEY"
	EnvBaseURL         = "OPENAI_BASE_URL"
	EnvModel           = "PRDWIZ_MODEL"
	EnvTranscribeModel = "PRDWIZ_TRANSCRIBE_MODEL"
	EnvLogLevel        = "PRDWIZ_LOG_LEVEL"
	EnvPreview         = "PRDWIZ_PREVIEW"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no key is configured.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set")

// Config is the effective configuration.
type Config struct {
	APIKey          string `yaml:"-"`
	BaseURL         string `yaml:"baseURL"`
	Model           string `yaml:"model"`
	TranscribeModel string `yaml:"transcribeModel"`
	LogLevel        string `yaml:"logLevel"`
	Preview         bool   `yaml:"preview"`
	OutputDir       string `yaml:"outputDir"`

	// Sources lists where values came from, in the order they were applied.
	Sources []string `yaml:"-"`
}

// rawConfig is used for YAML unmarshaling to distinguish missing keys from explicit empty values.
type rawConfig struct {
	BaseURL         *string `yaml:"baseURL"`
	Model           *string `yaml:"model"`
	TranscribeModel *string `yaml:"transcribeModel"`
	LogLevel        *string `yaml:"logLevel"`
	Preview         *bool   `yaml:"preview"`
	OutputDir       *string `yaml:"outputDir"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Model:           llm.DefaultModel,
		TranscribeModel: llm.DefaultTranscribeModel,
		LogLevel:        "info",
		Preview:         true,
		Sources:         []string{"defaults"},
	}
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, template.ConfigDir, template.ConfigFile)
}

// Load builds the configuration for dir. Later sources win: defaults,
// .prdwiz/config.yaml, .env, then the process environment. A missing file is
// not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	switch {
	case err == nil:
		var raw rawConfig
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", Path(dir), err)
		}
		cfg.applyFile(raw)
		cfg.Sources = append(cfg.Sources, Path(dir))
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	envPath := filepath.Join(dir, ".env")
	dotenv, err := godotenv.Read(envPath)
	switch {
	case err == nil:
		if err := cfg.applyEnv(func(k string) string { return dotenv[k] }); err != nil {
			return nil, fmt.Errorf("%s: %w", envPath, err)
		}
		cfg.Sources = append(cfg.Sources, envPath)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	cfg.Sources = append(cfg.Sources, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(raw rawConfig) {
	if raw.BaseURL != nil {
		c.BaseURL = *raw.BaseURL
	}
	if raw.Model != nil {
		c.Model = *raw.Model
	}
	if raw.TranscribeModel != nil {
		c.TranscribeModel = *raw.TranscribeModel
	}
	if raw.LogLevel != nil {
		c.LogLevel = *raw.LogLevel
	}
	if raw.Preview != nil {
		c.Preview = *raw.Preview
	}
	if raw.OutputDir != nil {
		c.OutputDir = *raw.OutputDir
	}
}

func (c *Config) applyEnv(lookup func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			*dst = v
		}
	}
	set(&c.APIKey, EnvAPIKey)
	set(&c.BaseURL, EnvBaseURL)
	set(&c.Model, EnvModel)
	set(&c.TranscribeModel, EnvTranscribeModel)
	set(&c.LogLevel, EnvLogLevel)

	if v := strings.TrimSpace(lookup(EnvPreview)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPreview, v, err)
		}
		c.Preview = b
	}
	return nil
}

// Validate checks that the Config fields are valid.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.TranscribeModel == "" {
		return fmt.Errorf("transcribeModel must not be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no key is configured. Only
// commands that call the model need one.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NewLogger returns a structured logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           c.Level(),
		Prefix:          prefix,
		ReportTimestamp: true,
	})
}

// MaskedAPIKey returns the key with all but the last four characters hidden.
func (c *Config) MaskedAPIKey() string {
	switch n := len(c.APIKey); {
	case n == 0:
		return "(not set)"
	case n <= 8:
		return strings.Repeat("*", n)
	default:
		return strings.Repeat("*", n-4) + c.APIKey[n-4:]
	}
}

// String renders the effective configuration with the API key masked.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("apiKey: %s\n%s", c.MaskedAPIKey(), out)
}
