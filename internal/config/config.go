package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the viewer
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Animation AnimationConfig `yaml:"animation"`
	Assets    AssetsConfig    `yaml:"assets"`
	Feed      FeedConfig      `yaml:"feed"`
	Log       LogConfig       `yaml:"log"`
	Share     ShareConfig     `yaml:"share"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// DatasetConfig says where the compact dataset comes from. URL wins over Path.
type DatasetConfig struct {
	Path        string `yaml:"path"`
	URL         string `yaml:"url"`
	InferLevels bool   `yaml:"inferLevels"`
}

// AnimationConfig holds the shared cycle timing
type AnimationConfig struct {
	Cycle time.Duration `yaml:"cycle"`
}

// AssetsConfig holds the static media directory
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// FeedConfig guards the device feed endpoint. An empty token is generated at startup.
type FeedConfig struct {
	Token string `yaml:"token"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// ShareConfig holds the public base URL used in share links. Empty means
// localhost on the server port.
type ShareConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8090,
			AllowedOrigins: []string{"*"},
		},
		Dataset: DatasetConfig{
			Path: "m8-shortcuts.dataset.json",
		},
		Animation: AnimationConfig{
			Cycle: 1500 * time.Millisecond,
		},
		Assets: AssetsConfig{
			Dir: "./assets",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// M8KEYS_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnv("M8KEYS_CONFIG", ""); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays values present in a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays M8KEYS_* environment variables onto c.
func (c *Config) ApplyEnv() {
	c.Server.Host = getEnv("M8KEYS_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("M8KEYS_PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnvAsList("M8KEYS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Dataset.Path = getEnv("M8KEYS_DATASET", c.Dataset.Path)
	c.Dataset.URL = getEnv("M8KEYS_DATASET_URL", c.Dataset.URL)
	c.Dataset.InferLevels = getEnvAsBool("M8KEYS_INFER_LEVELS", c.Dataset.InferLevels)
	c.Animation.Cycle = getEnvAsDuration("M8KEYS_CYCLE", c.Animation.Cycle)
	c.Assets.Dir = getEnv("M8KEYS_ASSETS_DIR", c.Assets.Dir)
	c.Feed.Token = getEnv("M8KEYS_FEED_TOKEN", c.Feed.Token)
	c.Log.Level = getEnv("M8KEYS_LOG_LEVEL", c.Log.Level)
	c.Share.BaseURL = getEnv("M8KEYS_BASE_URL", c.Share.BaseURL)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Dataset.Path == "" && c.Dataset.URL == "" {
		return fmt.Errorf("dataset path or URL is required")
	}

	if c.Animation.Cycle <= 0 {
		return fmt.Errorf("animation cycle must be positive, got %s", c.Animation.Cycle)
	}

	return nil
}

// ShareBaseURL is the configured share base, or localhost on the final
// server port when none is set.
func (c *Config) ShareBaseURL() string {
	if c.Share.BaseURL != "" {
		return strings.TrimRight(c.Share.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
