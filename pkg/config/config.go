package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Beamline  BeamlineConfig            `yaml:"beamline"`
	Catalog   CatalogConfig             `yaml:"catalog"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
}

type AppConfig struct {
	Name       string `yaml:"name"`
	Workspace  string `yaml:"workspace"`
	PromptsDir string `yaml:"prompts_dir"`
}

// BeamlineConfig holds the Bluesky Queue Server connection settings.
type BeamlineConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Mock           bool   `yaml:"mock"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

// CatalogConfig holds the Tiled data catalog connection settings.
type CatalogConfig struct {
	URI    string `yaml:"uri"`
	APIKey string `yaml:"api_key"`
	Mock   bool   `yaml:"mock"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type MemoryConfig struct {
	Path string `yaml:"path"`
}

func LoadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	return cfg
}

// Parse decodes YAML config bytes, fills defaults and applies
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Beamline.TimeoutSeconds == 0 {
		c.Beamline.TimeoutSeconds = 300
	}
	if c.Beamline.PollIntervalMs == 0 {
		c.Beamline.PollIntervalMs = 1000
	}
	if c.App.PromptsDir == "" {
		c.App.PromptsDir = "./prompts"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "bl531.db"
	}
}

// applyEnv lets deployment environments override the file settings.
// BL531_MOCK_MODE flips both clients into mock mode at once.
func (c *Config) applyEnv() {
	if v := os.Getenv("BL531_BASE_URL"); v != "" {
		c.Beamline.BaseURL = v
	}
	if v := os.Getenv("BL531_API_KEY"); v != "" {
		c.Beamline.APIKey = v
	}
	if v := os.Getenv("TILED_URI"); v != "" {
		c.Catalog.URI = v
	}
	if v := os.Getenv("TILED_API_KEY"); v != "" {
		c.Catalog.APIKey = v
	}
	if v := os.Getenv("BL531_MOCK_MODE"); v != "" {
		mock := strings.EqualFold(v, "true") || v == "1"
		c.Beamline.Mock = mock
		c.Catalog.Mock = mock
	}
}

func (c *Config) PlanTimeout() time.Duration {
	return time.Duration(c.Beamline.TimeoutSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Beamline.PollIntervalMs) * time.Millisecond
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}
