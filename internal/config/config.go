package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingModelAPIKey   = errors.New("model provider api key not found")
	ErrMissingWeatherAPIKey = errors.New("weather api key not found")
)

// Config is everything a chat session needs. It is passed explicitly to each component.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Weather WeatherConfig `yaml:"weather"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type ModelConfig struct {
	Name         string `yaml:"name"`
	APIKey       string `yaml:"apiKey"`
	BaseURL      string `yaml:"baseUrl"`
	MaxTokens    int64  `yaml:"maxTokens"`
	MaxToolCalls int    `yaml:"maxToolCalls"`
}

type WeatherConfig struct {
	APIKey        string        `yaml:"apiKey"`
	BaseURL       string        `yaml:"baseUrl"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    uint64        `yaml:"maxRetries"`
	RetryInterval time.Duration `yaml:"retryInterval"`
}

// CacheConfig controls the SQLite geocode and forecast cache. An empty Path disables it.
type CacheConfig struct {
	Path        string        `yaml:"path"`
	GeocodeTTL  time.Duration `yaml:"geocodeTtl"`
	ForecastTTL time.Duration `yaml:"forecastTtl"`
	Retention   time.Duration `yaml:"retention"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load builds a Config from defaults, the optional YAML file at path, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:         "gpt-4o-mini",
			MaxTokens:    1024,
			MaxToolCalls: 8,
		},
		Weather: WeatherConfig{
			BaseURL:       "https://api.openweathermap.org",
			Timeout:       30 * time.Second,
			MaxRetries:    2,
			RetryInterval: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			GeocodeTTL:  30 * 24 * time.Hour,
			ForecastTTL: 10 * time.Minute,
			Retention:   7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("WEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate reports the first missing credential. There are no defaults for credentials.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model.APIKey) == "" {
		return ErrMissingModelAPIKey
	}
	if strings.TrimSpace(c.Weather.APIKey) == "" {
		return ErrMissingWeatherAPIKey
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		return errors.New("model name is required")
	}
	return nil
}
