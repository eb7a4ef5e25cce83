// Package config loads the service configuration from a YAML file plus a
// local .env for secrets. API keys never live in the YAML checked into a
// repo; they come from the environment and are injected explicitly into the
// clients that need them.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Hunter    HunterConfig    `yaml:"hunter"`
	Worker    WorkerConfig    `yaml:"worker"`
	Review    ReviewConfig    `yaml:"review"`
	Events    []EventConfig   `yaml:"events"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EventConfig is an upcoming event offered to the prompt composer.
type EventConfig struct {
	Name     string `yaml:"name"`
	Date     string `yaml:"date"`
	Location string `yaml:"location"`
	URL      string `yaml:"url"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	APIKey     string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AnthropicConfig struct {
	APIKey      string        `yaml:"-"` // ANTHROPIC_API_KEY only
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	CallDelay   time.Duration `yaml:"call_delay"`
}

type HunterConfig struct {
	APIKey  string        `yaml:"-"` // HUNTER_API_KEY only
	Timeout time.Duration `yaml:"timeout"`
}

type WorkerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ReviewConfig struct {
	SaveDebounce time.Duration `yaml:"save_debounce"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, merges secrets from a .env file (when
// present) and the process environment, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	loadEnv(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns a usable configuration without a YAML file; secrets still
// come from .env or the environment.
func Default() *Config {
	cfg := &Config{}
	loadEnv(cfg)
	setDefaults(cfg)
	return cfg
}

func loadEnv(cfg *Config) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("HUNTER_API_KEY"); v != "" {
		cfg.Hunter.APIKey = v
	}
	if v := os.Getenv("OUTREACH_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "outreach.db"
	}
	if cfg.Worker.PollInterval == 0 {
		cfg.Worker.PollInterval = 5 * time.Second
	}
	if cfg.Review.SaveDebounce == 0 {
		cfg.Review.SaveDebounce = time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	if cfg.Anthropic.Temperature < 0 || cfg.Anthropic.Temperature > 1 {
		return fmt.Errorf("anthropic.temperature must be between 0 and 1, got %v", cfg.Anthropic.Temperature)
	}
	if cfg.Worker.PollInterval < 0 {
		return fmt.Errorf("worker.poll_interval must be positive")
	}
	return nil
}
