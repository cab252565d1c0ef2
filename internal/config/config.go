package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/custclassify/internal/ai"
)

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid config")

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Environment variables consulted after the config file is read.
// EnvConfig names the config file itself and is resolved by the CLI.
const (
	EnvConfig      = "CUSTCLASSIFY_CONFIG"
	EnvProvider    = "CUSTCLASSIFY_PROVIDER"
	EnvModel       = "CUSTCLASSIFY_MODEL"
	EnvBaseURL     = "CUSTCLASSIFY_BASE_URL"
	EnvHistoryPath = "CUSTCLASSIFY_HISTORY_PATH"
)

// apiKeyEnv maps each provider to the variable holding its credentials.
var apiKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
}

var defaultModels = map[string]string{
	ProviderAnthropic: ai.DefaultAnthropicModel,
	ProviderOpenAI:    ai.DefaultOpenAIModel,
}

// Config is the resolved configuration for a classification run.
type Config struct {
	Provider  string        // "anthropic" or "openai"
	Model     string        // provider model identifier
	APIKey    string        // from api_key or the provider's env var
	BaseURL   string        // empty uses the provider default
	Timeout   time.Duration // zero leaves the SDK default
	MaxTokens int64
	History   HistoryConfig
	Defaults  DefaultsConfig
}

// HistoryConfig controls the optional SQLite record of past classifications.
type HistoryConfig struct {
	Path string `yaml:"path"` // empty disables history
}

// Enabled reports whether classifications should be recorded.
func (h HistoryConfig) Enabled() bool {
	return h.Path != ""
}

// DefaultsConfig supplies request values when no flags are given.
type DefaultsConfig struct {
	CustomerInformation string   `yaml:"customer_information"`
	Industry            string   `yaml:"industry"`
	Categories          []string `yaml:"categories"`
}

// Built-in request defaults, used when neither config nor flags set them.
var builtinDefaults = DefaultsConfig{
	CustomerInformation: "Jaxon is a baker that loves cakes. He would bake a cake whenever he can.",
	Industry:            "Food and Drink",
	Categories:          []string{"best customer", "good customer", "bad customer"},
}

const defaultMaxTokens = 1024

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Provider  string         `yaml:"provider"`
	Model     string         `yaml:"model"`
	APIKey    string         `yaml:"api_key"`
	BaseURL   string         `yaml:"base_url"`
	Timeout   string         `yaml:"timeout"`
	MaxTokens int64          `yaml:"max_tokens"`
	History   HistoryConfig  `yaml:"history"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// LoadOptions says where to read configuration from and which command-line
// values take precedence over it.
type LoadOptions struct {
	Path     string // YAML config file
	Required bool   // a missing Path is an error only when true
	Provider string // overrides file and environment when set
	Model    string // overrides file and environment when set
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set keep their value. A missing file is an error
// only when required is true.
func LoadEnvFile(path string, required bool) error {
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads the optional YAML config, applies environment and command-line
// overrides, fills defaults, and validates the result.
// Credentials are not checked here; see RequireCredentials.
func Load(opts LoadOptions) (*Config, error) {
	var raw rawConfig

	data, err := os.ReadFile(opts.Path)
	switch {
	case err == nil:
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !opts.Required:
		// no file: environment and defaults only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&raw)
	if opts.Provider != "" {
		raw.Provider = opts.Provider
	}
	if opts.Model != "" {
		raw.Model = opts.Model
	}

	var timeout time.Duration
	if raw.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: parse timeout %q: %v", ErrInvalid, raw.Timeout, err)
		}
	}

	cfg := &Config{
		Provider:  raw.Provider,
		Model:     raw.Model,
		APIKey:    raw.APIKey,
		BaseURL:   raw.BaseURL,
		Timeout:   timeout,
		MaxTokens: raw.MaxTokens,
		History:   raw.History,
		Defaults:  raw.Defaults,
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(raw *rawConfig) {
	if v := os.Getenv(EnvProvider); v != "" {
		raw.Provider = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		raw.Model = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		raw.BaseURL = v
	}
	if v := os.Getenv(EnvHistoryPath); v != "" {
		raw.History.Path = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderAnthropic
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.APIKey == "" {
		if env, ok := apiKeyEnv[cfg.Provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Defaults.CustomerInformation == "" {
		cfg.Defaults.CustomerInformation = builtinDefaults.CustomerInformation
	}
	if cfg.Defaults.Industry == "" {
		cfg.Defaults.Industry = builtinDefaults.Industry
	}
	if len(cfg.Defaults.Categories) == 0 {
		cfg.Defaults.Categories = append([]string(nil), builtinDefaults.Categories...)
	}
}

func validate(cfg *Config) error {
	if _, ok := apiKeyEnv[cfg.Provider]; !ok {
		return fmt.Errorf("%w: provider must be %q or %q, got %q", ErrInvalid, ProviderAnthropic, ProviderOpenAI, cfg.Provider)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %v", ErrInvalid, cfg.Timeout)
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalid, cfg.MaxTokens)
	}
	return nil
}

// RequireCredentials returns an error when no API key was found for the
// configured provider.
func (c *Config) RequireCredentials() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api_key is required (set %s or api_key in the config file)", ErrInvalid, apiKeyEnv[c.Provider])
	}
	return nil
}

// APIOptions converts the config into provider request options.
func (c *Config) APIOptions() ai.Options {
	return ai.Options{
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Temperature: 0,
		MaxTokens:   c.MaxTokens,
		Timeout:     c.Timeout,
	}
}
