package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
}

// ReportConfig controls which training tables are produced and how
type ReportConfig struct {
	Formats      []string `yaml:"formats" envconfig:"FORMATS"`
	WithDistance bool     `yaml:"with_distance" envconfig:"WITH_DISTANCE"`
	AllOrders    bool     `yaml:"all_orders" envconfig:"ALL_ORDERS"`
	CategoryAgg  string   `yaml:"category_agg" envconfig:"CATEGORY_AGG"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Paths: PathsConfig{
			DataDir:   "data/csv",
			OutputDir: "data/reports",
		},
		Report: ReportConfig{
			Formats:     []string{"csv"},
			CategoryAgg: "mean",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/feature-report.log",
		},
	}
}

// Load builds the configuration in three layers: defaults, then an
// optional YAML file, then environment variables (OLIST_ prefix).
// Later layers win.
func Load() (*Config, error) {
	cfg := Default()

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("OLIST", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile merges configuration from a YAML file into cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks configuration values
func (c *Config) validate() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir must not be empty")
	}

	validFormats := map[string]bool{"csv": true, "xlsx": true, "parquet": true}
	for _, f := range c.Report.Formats {
		if !validFormats[strings.ToLower(f)] {
			return fmt.Errorf("invalid report format: %s (must be csv, xlsx or parquet)", f)
		}
	}

	switch c.Report.CategoryAgg {
	case "mean", "median":
	default:
		return fmt.Errorf("invalid category aggregation: %s (must be mean or median)", c.Report.CategoryAgg)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s (must be console, file or both)", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the path to the configuration file
func getConfigFilePath() string {
	if path := os.Getenv("OLIST_CONFIG_FILE"); path != "" {
		return path
	}
	return filepath.Join(".", "config.yaml")
}

// HasFormat reports whether the given output format is enabled
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Report.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
