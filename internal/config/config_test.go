package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Point the file lookup away from any real config.yaml
	t.Setenv("OLIST_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/csv", cfg.Paths.DataDir)
	assert.Equal(t, "data/reports", cfg.Paths.OutputDir)
	assert.Equal(t, []string{"csv"}, cfg.Report.Formats)
	assert.Equal(t, "mean", cfg.Report.CategoryAgg)
	assert.False(t, cfg.Report.WithDistance)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OLIST_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("OLIST_PATHS_DATA_DIR", "/srv/olist/csv")
	t.Setenv("OLIST_REPORT_FORMATS", "csv,parquet")
	t.Setenv("OLIST_REPORT_CATEGORY_AGG", "median")
	t.Setenv("OLIST_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/olist/csv", cfg.Paths.DataDir)
	assert.Equal(t, []string{"csv", "parquet"}, cfg.Report.Formats)
	assert.Equal(t, "median", cfg.Report.CategoryAgg)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
paths:
  data_dir: /data/olist
  output_dir: /data/out
report:
  formats: [csv, xlsx]
  category_agg: median
logging:
  level: warn
  output: console
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("OLIST_CONFIG_FILE", configPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/olist", cfg.Paths.DataDir)
	assert.Equal(t, "/data/out", cfg.Paths.OutputDir)
	assert.Equal(t, "median", cfg.Report.CategoryAgg)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Paths:   PathsConfig{DataDir: "d", OutputDir: "o"},
		Report:  ReportConfig{Formats: []string{"csv"}, CategoryAgg: "mean"},
		Logging: LoggingConfig{Level: "info", Output: "console"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Paths.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Report.Formats = []string{"avro"} },
			wantErr: "invalid report format",
		},
		{
			name:    "unknown aggregation",
			mutate:  func(c *Config) { c.Report.CategoryAgg = "mode" },
			wantErr: "invalid category aggregation",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log output",
			mutate:  func(c *Config) { c.Logging.Output = "syslog" },
			wantErr: "invalid log output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHasFormat(t *testing.T) {
	cfg := Config{Report: ReportConfig{Formats: []string{"csv", "Parquet"}}}

	assert.True(t, cfg.HasFormat("csv"))
	assert.True(t, cfg.HasFormat("parquet"))
	assert.False(t, cfg.HasFormat("xlsx"))
}
