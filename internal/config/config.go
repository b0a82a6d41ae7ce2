package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName    = "config.yaml"
	EnvPrefix   = "KANBAN"
	DefaultSlot = "kanban-storage"
)

type Config struct {
	Backend       string `yaml:"backend,omitempty" mapstructure:"backend"`
	Slot          string `yaml:"slot,omitempty" mapstructure:"slot"`
	DefaultBucket string `yaml:"default_bucket,omitempty" mapstructure:"default_bucket"`
	LogLevel      string `yaml:"log_level,omitempty" mapstructure:"log_level"`
	Listen        string `yaml:"listen,omitempty" mapstructure:"listen"`
}

func Default() *Config {
	return &Config{
		Backend:  "json",
		Slot:     DefaultSlot,
		LogLevel: "warn",
		Listen:   ":5001",
	}
}

// Load reads dataDir/config.yaml on top of the defaults. KANBAN_* environment
// variables override file values, e.g. KANBAN_BACKEND or KANBAN_DEFAULT_BUCKET.
// A missing file is not an error.
func Load(dataDir string) (*Config, error) {
	def := Default()
	v := viper.New()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("slot", def.Slot)
	v.SetDefault("default_bucket", def.DefaultBucket)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("listen", def.Listen)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dataDir, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, FileName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{"backend", "slot", "default_bucket", "log_level", "listen"}

var backends = []string{"json", "markdown", "sqlite"}

// Set assigns one setting by its config file key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "backend":
		if !slices.Contains(backends, value) {
			return fmt.Errorf("invalid backend %q: must be one of %s", value, strings.Join(backends, ", "))
		}
		c.Backend = value
	case "slot":
		if value == "" || strings.ContainsAny(value, `/\`) {
			return fmt.Errorf("invalid slot %q", value)
		}
		c.Slot = value
	case "default_bucket":
		c.DefaultBucket = value
	case "log_level":
		c.LogLevel = value
	case "listen":
		c.Listen = value
	default:
		return fmt.Errorf("unknown config key %q: must be one of %s", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns one setting by its config file key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "backend":
		return c.Backend, nil
	case "slot":
		return c.Slot, nil
	case "default_bucket":
		return c.DefaultBucket, nil
	case "log_level":
		return c.LogLevel, nil
	case "listen":
		return c.Listen, nil
	}
	return "", fmt.Errorf("unknown config key %q: must be one of %s", key, strings.Join(Keys, ", "))
}
