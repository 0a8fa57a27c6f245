package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Listen            string        `mapstructure:"listen"`
	LogLevel          string        `mapstructure:"log-level"`
	MetricsPath       string        `mapstructure:"metrics-path"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat-interval"`
	HeartbeatMark     string        `mapstructure:"heartbeat-mark"`
	TLSCertFile       string        `mapstructure:"tls-cert-file"`
	TLSKeyFile        string        `mapstructure:"tls-key-file"`
	AuthToken         string        `mapstructure:"auth-token"`
}

// New creates a new Config object
func New() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("listen", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("metrics-path", "/metrics")
	v.SetDefault("heartbeat-interval", 10*time.Second)
	v.SetDefault("heartbeat-mark", ".")
	v.SetDefault("tls-cert-file", "")
	v.SetDefault("tls-key-file", "")
	v.SetDefault("auth-token", "")

	// Define command-line flags
	pflag.String("listen", "", "Address for the diagnostics HTTP server (e.g. :8080). Empty disables it.")
	pflag.String("log-level", "info", "Logging level (debug, info, warn, error)")
	pflag.String("metrics-path", "/metrics", "Metrics endpoint path")
	pflag.Duration("heartbeat-interval", 10*time.Second, "Interval between heartbeat marks")
	pflag.String("heartbeat-mark", ".", "Character written on each heartbeat")
	pflag.String("tls-cert-file", "", "Path to TLS certificate file")
	pflag.String("tls-key-file", "", "Path to TLS key file")
	pflag.String("auth-token", "", "Authentication token for the shutdown endpoint")
	pflag.String("config-file", "", "Path to JSON config file. Can also be set with ENVPROBE_CONFIG_FILE env var.")
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	// Set up environment variable binding
	v.SetEnvPrefix("ENVPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Handle config file
	if configFile := v.GetString("config-file"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "",
		LogLevel:          "info",
		MetricsPath:       "/metrics",
		HeartbeatInterval: 10 * time.Second,
		HeartbeatMark:     ".",
		TLSCertFile:       "",
		TLSKeyFile:        "",
		AuthToken:         "",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate LogLevel
	validLogLevels := []string{"debug", "info", "warn", "error"}
	isValidLogLevel := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValidLogLevel = true
			break
		}
	}
	if !isValidLogLevel {
		return fmt.Errorf("invalid log-level: %s, must be one of %v", c.LogLevel, validLogLevels)
	}

	// Validate HeartbeatInterval
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("invalid heartbeat-interval: %s, must be positive", c.HeartbeatInterval)
	}

	// Validate HeartbeatMark
	if c.HeartbeatMark == "" {
		return fmt.Errorf("invalid heartbeat-mark: must not be empty")
	}

	// Validate MetricsPath
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("invalid metrics-path: %s, must start with /", c.MetricsPath)
	}

	return nil
}
