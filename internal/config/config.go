// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Sections map 1:1 onto
// the subsystems that consume them.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Tracker  TrackerConfig  `mapstructure:"tracker" yaml:"tracker"`
	Wiki     WikiConfig     `mapstructure:"wiki" yaml:"wiki"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// TrackerConfig holds the issue-tracker connection and query settings. The
// API token is only ever read from the environment, never from a file.
type TrackerConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	Email          string        `mapstructure:"email" yaml:"email"`
	APIToken       string        `mapstructure:"api_token" yaml:"-"`
	Project        string        `mapstructure:"project" yaml:"project"`
	UrgencyFieldID string        `mapstructure:"urgency_field_id" yaml:"urgency_field_id"`
	TeamsFieldID   string        `mapstructure:"teams_field_id" yaml:"teams_field_id"`
	PageSize       int           `mapstructure:"page_size" yaml:"page_size"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// WikiConfig holds the wiki (review document store) connection settings.
type WikiConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Email     string        `mapstructure:"email" yaml:"email"`
	APIToken  string        `mapstructure:"api_token" yaml:"-"`
	SpaceKey  string        `mapstructure:"space_key" yaml:"space_key"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// AnalysisConfig tunes the analyzer pipeline.
type AnalysisConfig struct {
	// MinContentChars is the cleaned-text threshold below which a document
	// is treated as insufficient and the analyzers are skipped.
	MinContentChars int `mapstructure:"min_content_chars" yaml:"min_content_chars"`
	Workers         int `mapstructure:"workers" yaml:"workers"`
}

// ReportConfig holds export settings. Since and RecentDays get their values
// from CLI flags, not the config file.
type ReportConfig struct {
	Format          string `mapstructure:"format" yaml:"format"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir"`
	PreserveContent bool   `mapstructure:"preserve_content" yaml:"preserve_content"`
	Since           string `mapstructure:"-" yaml:"-"`
	RecentDays      int    `mapstructure:"-" yaml:"-"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "postmortem-cli")
	v.SetDefault("logger.log_file", "postmortem.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Tracker --
	v.SetDefault("tracker.project", "INC")
	v.SetDefault("tracker.page_size", 100)
	v.SetDefault("tracker.timeout", "30s")
	v.SetDefault("tracker.rate_limit", 5.0)
	v.SetDefault("tracker.rate_burst", 5)

	// -- Wiki --
	v.SetDefault("wiki.timeout", "30s")
	v.SetDefault("wiki.rate_limit", 5.0)
	v.SetDefault("wiki.rate_burst", 5)

	// -- Analysis --
	v.SetDefault("analysis.min_content_chars", 50)
	v.SetDefault("analysis.workers", 4)

	// -- Report --
	v.SetDefault("report.format", "csv")
	v.SetDefault("report.output_dir", ".")
	v.SetDefault("report.preserve_content", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	v.BindEnv("tracker.api_token", "POSTMORTEM_TRACKER_TOKEN")
	v.BindEnv("wiki.api_token", "POSTMORTEM_WIKI_TOKEN")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the tokens if Unmarshal didn't pick them up
	if cfg.Tracker.APIToken == "" {
		cfg.Tracker.APIToken = os.Getenv("POSTMORTEM_TRACKER_TOKEN")
	}
	if cfg.Wiki.APIToken == "" {
		cfg.Wiki.APIToken = os.Getenv("POSTMORTEM_WIKI_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Tracker.PageSize <= 0 {
		return fmt.Errorf("tracker.page_size must be a positive integer")
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be a positive integer")
	}
	if c.Analysis.MinContentChars < 0 {
		return fmt.Errorf("analysis.min_content_chars must not be negative")
	}
	switch c.Report.Format {
	case "csv", "json", "both":
	default:
		return fmt.Errorf("report.format must be one of csv, json or both, got %q", c.Report.Format)
	}
	if c.Report.RecentDays < 0 {
		return fmt.Errorf("report.recent_days must not be negative")
	}
	return nil
}
