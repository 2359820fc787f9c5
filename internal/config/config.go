// Package config loads runtime settings from an optional YAML file, a .env
// file, and the environment, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Provider names accepted in the provider key.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	// ErrMissingAPIKey is returned when no usable provider credentials exist.
	ErrMissingAPIKey = errors.New("no API key configured for the selected provider")
	// ErrInvalid is wrapped by every Validate failure.
	ErrInvalid = errors.New("invalid configuration")
)

// Config stores all configuration of the application.
type Config struct {
	Provider      string  `mapstructure:"provider"`
	GeminiAPIKey  string  `mapstructure:"gemini_api_key"`
	GeminiModel   string  `mapstructure:"gemini_model"`
	OpenAIAPIKey  string  `mapstructure:"openai_api_key"`
	OpenAIModel   string  `mapstructure:"openai_model"`
	OpenAIBaseURL string  `mapstructure:"openai_base_url"`
	Temperature   float32 `mapstructure:"temperature"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MinRequestGap  time.Duration `mapstructure:"min_request_gap"`

	TickInterval        time.Duration `mapstructure:"tick_interval"`
	AlmostDoneThreshold time.Duration `mapstructure:"almost_done_threshold"`
	WatchInterval       time.Duration `mapstructure:"watch_interval"`

	PromptDir string `mapstructure:"prompt_dir"`
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
	Chime     bool   `mapstructure:"chime"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("temperature", 0.4)
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("min_request_gap", 2*time.Second)
	v.SetDefault("tick_interval", time.Second)
	v.SetDefault("almost_done_threshold", 30*time.Second)
	v.SetDefault("watch_interval", 5*time.Second)
	v.SetDefault("prompt_dir", "")
	v.SetDefault("log_level", "normal")
	v.SetDefault("log_file", filepath.Join(".otto-logs", "otto.log"))
	v.SetDefault("chime", true)
}

// Load reads ottocoach.yaml from dir, the working directory, or
// $HOME/.ottocoach (first found wins), then applies dir/.env and the
// environment. A missing file is not an error.
func Load(fs afero.Fs, dir string) (*Config, error) {
	if err := loadDotEnv(fs, filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetConfigName("ottocoach")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".ottocoach"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("OTTO")
	v.AutomaticEnv()
	_ = v.BindEnv("gemini_api_key", "OTTO_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("openai_api_key", "OTTO_OPENAI_API_KEY", "OPENAI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv sets variables from a .env file without overriding non-empty
// ones, like godotenv.Load, but through fs.
func loadDotEnv(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for k, val := range vars {
		if cur, set := os.LookupEnv(k); set && cur != "" {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return fmt.Errorf("setting %s: %w", k, err)
		}
	}
	return nil
}

// Validate checks value ranges. Credentials are checked separately by
// ResolveProvider, since the offline demo needs none.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalid, c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f outside [0, 2]", ErrInvalid, c.Temperature)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"request_timeout", c.RequestTimeout},
		{"tick_interval", c.TickInterval},
		{"almost_done_threshold", c.AlmostDoneThreshold},
		{"watch_interval", c.WatchInterval},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, d.name, d.d)
		}
	}
	if c.MinRequestGap < 0 {
		return fmt.Errorf("%w: min_request_gap must not be negative", ErrInvalid)
	}
	return nil
}

// ResolveProvider returns the provider to use. With no explicit provider,
// Gemini wins when both keys are set.
func (c *Config) ResolveProvider() (string, error) {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return "", fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
		}
		return ProviderGemini, nil
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return "", fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
		}
		return ProviderOpenAI, nil
	}

	switch {
	case c.GeminiAPIKey != "":
		return ProviderGemini, nil
	case c.OpenAIAPIKey != "":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("%w: set GEMINI_API_KEY or OPENAI_API_KEY", ErrMissingAPIKey)
	}
}
