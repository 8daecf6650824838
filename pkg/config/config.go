package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete specwatch configuration
type Config struct {
	Polling  PollingConfig  `mapstructure:"polling"`
	Scanning ScanningConfig `mapstructure:"scanning"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Claude   ClaudeConfig   `mapstructure:"claude"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PollingConfig controls how watched specs are fetched
type PollingConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// ScanningConfig controls repository scanning
type ScanningConfig struct {
	IntervalHours int `mapstructure:"interval_hours"`
	Workers       int `mapstructure:"workers"`
}

// StorageConfig contains storage configuration
type StorageConfig struct {
	BaseDir string   `mapstructure:"base_dir"`
	Backend string   `mapstructure:"backend"`
	S3      S3Config `mapstructure:"s3"`
}

// S3Config configures the S3 artifact store for raw spec text
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// AlertsConfig configures alert dispatch
type AlertsConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ClaudeConfig contains Claude AI configuration for diff summaries
type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Polling: PollingConfig{
			Interval:     time.Hour,
			FetchTimeout: 30 * time.Second,
		},
		Scanning: ScanningConfig{
			IntervalHours: 24,
			Workers:       4,
		},
		Storage: StorageConfig{
			BaseDir: filepath.Join(homeDir, ".specwatch"),
			Backend: "local",
		},
		Alerts: AlertsConfig{
			Timeout: 30 * time.Second,
		},
		Claude: ClaudeConfig{
			APIKey: "",
			Model:  "claude-sonnet-4-20250514",
		},
		Output: OutputConfig{
			Format:  "table",
			Pretty:  true,
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from config file, environment, and defaults
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".specwatch"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SPECWATCH")
	viper.AutomaticEnv()

	viper.BindEnv("claude.api_key", "CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	viper.BindEnv("alerts.webhook_url", "SPECWATCH_WEBHOOK_URL")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we'll use defaults
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base dir is required")
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("polling interval must be positive")
	}
	if c.Polling.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Scanning.IntervalHours <= 0 {
		return fmt.Errorf("scan interval must be positive")
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3 backend requires a bucket")
	}
	return nil
}

// HasAIFeatures checks if AI diff summaries are available
func (c *Config) HasAIFeatures() bool {
	return c.Claude.APIKey != ""
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	var err error
	c.Storage.BaseDir, err = expandPath(c.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to expand storage base dir: %w", err)
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
