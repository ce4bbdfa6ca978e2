// Package config loads multiverse settings from defaults, an optional
// multiverse.yaml file, and MULTIVERSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultStorePath is the SQLite snapshot database used when none is configured.
	DefaultStorePath = "multiverse.db"

	// DefaultDecayFactor is applied by scenario decay steps that name no factor.
	DefaultDecayFactor = 0.9

	// DefaultGoldenDir holds golden scenario outcomes.
	DefaultGoldenDir = "testdata/golden"
)

// Config holds all configuration for multiverse.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Emotion EmotionConfig `mapstructure:"emotion"`
	Harness HarnessConfig `mapstructure:"harness"`
}

// StoreConfig holds snapshot database settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EmotionConfig holds appraisal engine tuning.
type EmotionConfig struct {
	DecayFactor float64 `mapstructure:"decay_factor"`
}

// HarnessConfig holds scenario runner settings.
type HarnessConfig struct {
	GoldenDir string `mapstructure:"golden_dir"`
}

// Load reads configuration. When file is empty, multiverse.yaml is searched
// for in the working directory and in ~/.multiverse; a missing file is not
// an error. An explicitly named file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("emotion.decay_factor", DefaultDecayFactor)
	v.SetDefault("harness.golden_dir", DefaultGoldenDir)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("multiverse")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(homeDir(), ".multiverse"))
	}

	v.SetEnvPrefix("MULTIVERSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file: defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration values are set and in range.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	if c.Emotion.DecayFactor < 0 || c.Emotion.DecayFactor > 1 {
		return fmt.Errorf("emotion.decay_factor must be between 0 and 1")
	}
	if c.Harness.GoldenDir == "" {
		return fmt.Errorf("harness.golden_dir must not be empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
