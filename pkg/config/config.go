// Package config loads client configuration from a file or environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Version is the released version, set at build time.
var Version = "dev"

// Config holds application-wide configuration
type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// EndpointConfig describes the PostgREST server to talk to and how.
type EndpointConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

// RetryConfig holds transport retry settings. Retry covers transient
// failures only; 4xx responses always surface immediately.
type RetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"maxRetries"`
	InitialBackoff time.Duration `mapstructure:"initialBackoff"`
	MaxBackoff     time.Duration `mapstructure:"maxBackoff"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		BaseURL: "http://localhost:3000",
		Timeout: 5 * time.Second,
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
		},
	}
}

// Load reads config from file or environment
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pgrest")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("PGREST")

	defaults := DefaultEndpointConfig()
	v.SetDefault("endpoint.baseURL", defaults.BaseURL)
	v.SetDefault("endpoint.timeout", defaults.Timeout)
	v.SetDefault("endpoint.retry.maxRetries", defaults.Retry.MaxRetries)
	v.SetDefault("endpoint.retry.initialBackoff", defaults.Retry.InitialBackoff)
	v.SetDefault("endpoint.retry.maxBackoff", defaults.Retry.MaxBackoff)
	v.SetDefault("metrics.addr", ":9100")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}
