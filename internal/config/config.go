// Package config handles reading and writing .charchat/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/charchat/charchat/internal/api"
)

// Config is the top-level structure for .charchat/config.yaml.
type Config struct {
	Version int        `yaml:"version"`
	API     APIConfig  `yaml:"api"`
	Chat    ChatConfig `yaml:"chat"`
	Log     LogConfig  `yaml:"log"`
}

// APIConfig locates the chat server.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChatConfig controls chat requests.
type ChatConfig struct {
	MaxContextMessages int `yaml:"max_context_messages"`
}

// LogConfig controls the client event log.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	// MaxAgeDays is how long "charchat clean" keeps events by default.
	MaxAgeDays int `yaml:"max_age_days"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Environment variables that override the config file.
const (
	EnvAPIURL     = "CHARCHAT_API_URL"
	EnvTimeout    = "CHARCHAT_TIMEOUT"
	EnvMaxContext = "CHARCHAT_MAX_CONTEXT"
	EnvLogLevel   = "CHARCHAT_LOG_LEVEL"
)

// configDir is relative to the working directory.
const configDir = ".charchat"
const configFile = "config.yaml"

// Dir returns the .charchat directory inside dir.
func Dir(dir string) string {
	return filepath.Join(dir, configDir)
}

// ReadConfig reads .charchat/config.yaml from the given directory.
// dir is the project root (not .charchat/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .charchat/config.yaml in the given directory.
// Creates the .charchat/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:        api.DefaultBaseURL,
			TimeoutSeconds: 60,
		},
		Chat: ChatConfig{
			MaxContextMessages: api.DefaultMaxContextMessages,
		},
		Log: LogConfig{
			Level:      "info",
			MaxAgeDays: 30,
		},
	}
}

// Load reads the config file in dir, falling back to defaults when it does
// not exist, then applies .env and environment overrides.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}

	// A missing .env is normal; variables already set win over the file.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CHARCHAT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}

	timeout, err := parseOptionalIntEnv(EnvTimeout)
	if err != nil {
		return err
	}
	if timeout != nil {
		c.API.TimeoutSeconds = *timeout
	}

	maxContext, err := parseOptionalIntEnv(EnvMaxContext)
	if err != nil {
		return err
	}
	if maxContext != nil {
		c.Chat.MaxContextMessages = *maxContext
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}

	return c.Validate()
}

// Validate rejects values the client cannot work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.Chat.MaxContextMessages < 1 {
		return fmt.Errorf("chat.max_context_messages must be at least 1, got %d", c.Chat.MaxContextMessages)
	}
	if c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log.max_age_days must not be negative, got %d", c.Log.MaxAgeDays)
	}
	return nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
