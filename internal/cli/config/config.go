// Package config loads CLI configuration for the serve command
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the jsonata service configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Limits LimitsConfig `mapstructure:"limits"`
}

// ServerConfig represents listener configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LimitsConfig bounds each evaluation the service performs
type LimitsConfig struct {
	MaxDepth  int           `mapstructure:"max_depth"`
	TimeLimit time.Duration `mapstructure:"time_limit"`
}

// Address returns the listen address in host:port form
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load loads the configuration from jsonata.yml or jsonata.yaml in the
// working directory, falling back to defaults. Environment variables
// override file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("limits.max_depth", 1000)
	v.SetDefault("limits.time_limit", 5*time.Second)

	v.SetConfigName("jsonata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("jsonata")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}
