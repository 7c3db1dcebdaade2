// Package config loads the configuration of the drvfs command.
//
// Values come from, in order of precedence, DRVFS_* environment variables,
// a YAML or TOML file, and defaults:
//
//	DRVFS_LOGGING_LEVEL=debug DRVFS_BACKEND_TYPE=os DRVFS_BACKEND_ROOT=/srv/vol drvfs ls /
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DRVFS"

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Backend BackendConfig `mapstructure:"backend"`
	// Workdir is the directory the driver changes into before running a command.
	Workdir string        `mapstructure:"workdir" validate:"omitempty,startswith=/"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN or ERROR, in any case.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	// Format is text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// BackendConfig selects the storage the driver runs on.
type BackendConfig struct {
	// Type is memory for a volatile in-memory volume, or os for a host directory.
	Type string `mapstructure:"type" validate:"required,oneof=memory os"`
	// Root is the host directory used as the volume root. Required for os.
	Root string `mapstructure:"root" validate:"required_if=Type os"`
}

type MetricsConfig struct {
	// Enabled instruments the driver and prints the collected metrics after the command.
	Enabled bool `mapstructure:"enabled"`
}

// keys lists every configuration key so that environment variables are honored
// even when the file does not mention them.
var keys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"backend.type",
	"backend.root",
	"workdir",
	"metrics.enabled",
}

// Load reads the configuration file at configPath, applies environment variables
// and defaults, and validates the result.
// An empty configPath looks for config.yaml in the default directory; a missing default file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if err := setupViper(v, configPath); err != nil {
		return nil, err
	}
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %q: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	return nil
}

func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read config file: %w", err)
}

// ConfigDir returns $XDG_CONFIG_HOME/drvfs, ~/.config/drvfs,
// or the current directory if neither can be determined.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "drvfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "drvfs")
}
