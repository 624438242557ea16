// SPDX-License-Identifier: Apache-2.0

// Package config loads application configuration from file, environment and
// defaults, in that order of increasing precedence for the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joomcode/errorx"
	"github.com/reviewdeck/reviewdeck/pkg/logx"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "REVIEWDECK"
	defaultConfigName = "config"
	defaultConfigType = "yaml"
)

var (
	ErrNamespace = errorx.NewNamespace("config")

	// Unreadable reports a config file that exists but cannot be read or
	// parsed.
	Unreadable = ErrNamespace.NewType("unreadable")

	// Malformed reports configuration that read fine but does not map onto
	// the Config structure.
	Malformed = ErrNamespace.NewType("malformed")
)

// Config is the full application configuration.
type Config struct {
	// DataDir is the directory the key-value store persists into.
	DataDir string `mapstructure:"dataDir" yaml:"dataDir"`
	// Log configures the global logger.
	Log logx.LoggingConfig `mapstructure:"log" yaml:"log"`
}

var (
	mu     sync.Mutex
	loaded *Config
)

// DefaultDataDir returns the per-user data directory, falling back to a
// relative path when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reviewdeck"
	}
	return filepath.Join(home, ".reviewdeck")
}

// Initialize loads configuration from configFile (or the default search
// paths when empty) and caches the result for Get. A config file missing
// from the default search paths is not an error; defaults and environment
// apply.
func Initialize(configFile string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	v := viper.New()
	v.SetDefault("dataDir", DefaultDataDir())
	v.SetDefault("log.level", logx.DefaultConfig().Level)
	v.SetDefault("log.consoleLogging", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType(defaultConfigType)
		v.AddConfigPath(DefaultDataDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, Unreadable.Wrap(err, "failed to read config file")
		}
	}

	migrateDeprecatedKeys(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, Malformed.Wrap(err, "failed to parse configuration")
	}

	loaded = cfg
	return cfg, nil
}

// Get returns the configuration loaded by Initialize, or defaults when
// Initialize has not run.
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()
	if loaded == nil {
		return &Config{
			DataDir: DefaultDataDir(),
			Log:     logx.DefaultConfig(),
		}
	}
	return loaded
}
