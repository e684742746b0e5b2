package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
)

// DefaultAPIBaseURL is used when neither the config file nor the
// environment names an API base.
const DefaultAPIBaseURL = "https://api.yourdomain.com"

const (
	EnvAPIBaseURL    = "TRADESIGNAL_API_URL"
	EnvStreamEnabled = "TRADESIGNAL_STREAM_ENABLED"
	EnvLogLevel      = "TRADESIGNAL_LOG_LEVEL"
	EnvLogFormat     = "TRADESIGNAL_LOG_FORMAT"
	EnvStatusAddr    = "TRADESIGNAL_STATUS_ADDR"
	EnvServeAddr     = "TRADESIGNAL_SERVE_ADDR"
)

type Config struct {
	APIBaseURL string        `yaml:"api_base_url"`
	Stream     StreamConfig  `yaml:"stream"`
	Status     ListenConfig  `yaml:"status"`
	Serve      ListenConfig  `yaml:"serve"`
	Log        logger.Config `yaml:"log"`
}

type StreamConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ListenConfig struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	return &Config{
		APIBaseURL: DefaultAPIBaseURL,
		Stream:     StreamConfig{Enabled: true},
		Status:     ListenConfig{Addr: ":8081"},
		Serve:      ListenConfig{Addr: ":8080"},
		Log:        *logger.NewDefaultConfig(),
	}
}

// Load builds a Config from defaults, then the optional YAML file at path,
// then the optional dotenv file, then the process environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	if envFile != "" {
		// godotenv.Load never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file '%s': %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.LevelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	cfg.Log.Level = level

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv(EnvStreamEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvStreamEnabled, v, err)
		}
		c.Stream.Enabled = enabled
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.LevelName = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvStatusAddr); v != "" {
		c.Status.Addr = v
	}
	if v := os.Getenv(EnvServeAddr); v != "" {
		c.Serve.Addr = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url cannot be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url %q: %w", c.APIBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be absolute", c.APIBaseURL)
	}
	if c.Status.Addr == "" {
		return fmt.Errorf("status listen address cannot be empty")
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve listen address cannot be empty")
	}
	return nil
}
