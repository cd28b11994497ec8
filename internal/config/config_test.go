package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "data/raw/raw_data.csv", cfg.Paths.RawDataFile)
				assert.Equal(t, "data/processed/german_processed.csv", cfg.Paths.ProcessedFile)
				assert.Equal(t, 60*time.Second, cfg.Download.Timeout)
				assert.Equal(t, int64(18), cfg.Validation.AgeMin)
				assert.Equal(t, int64(100), cfg.Validation.AgeMax)
				assert.Equal(t, 0.9, cfg.Validation.ClassBalanceThreshold)
				assert.Equal(t, int64(100000), cfg.Validation.CreditAmountOutlier)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, []int{3, 5, 7, 9, 11, 13, 15}, cfg.Training.Neighbours)
				assert.Equal(t, []int{50, 100, 200}, cfg.Training.ForestSizes)
			},
		},
		{
			name: "yaml file overrides defaults",
			fileContent: `
logging:
  level: debug
validation:
  age_max: 90
  class_balance_threshold: 0.8
download:
  timeout: 5s
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, int64(90), cfg.Validation.AgeMax)
				assert.Equal(t, 0.8, cfg.Validation.ClassBalanceThreshold)
				assert.Equal(t, 5*time.Second, cfg.Download.Timeout)
				// untouched fields keep defaults
				assert.Equal(t, int64(18), cfg.Validation.AgeMin)
			},
		},
		{
			name:        "env overrides yaml",
			fileContent: "logging:\n  level: debug\n",
			env: map[string]string{
				"CREDITRISK_LOGGING_LEVEL":         "error",
				"CREDITRISK_PATHS_PROCESSED_FILE":  "out/processed.csv",
				"CREDITRISK_TRAINING_NEIGHBOURS":   "1,3",
				"CREDITRISK_TRAINING_FOREST_SIZES": "10",
				"CREDITRISK_VALIDATION_CONCURRENT": "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "error", cfg.Logging.Level)
				assert.Equal(t, "out/processed.csv", cfg.Paths.ProcessedFile)
				assert.Equal(t, []int{1, 3}, cfg.Training.Neighbours)
				assert.Equal(t, []int{10}, cfg.Training.ForestSizes)
				assert.True(t, cfg.Validation.Concurrent)
			},
		},
		{
			name: "warning level is normalized",
			env:  map[string]string{"CREDITRISK_LOGGING_LEVEL": "warning"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid level",
			env:     map[string]string{"CREDITRISK_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:        "age max below age min",
			fileContent: "validation:\n  age_min: 50\n  age_max: 40\n",
			wantErr:     true,
		},
		{
			name:        "class balance threshold out of range",
			fileContent: "validation:\n  class_balance_threshold: 1.5\n",
			wantErr:     true,
		},
		{
			name:    "zero forest size",
			env:     map[string]string{"CREDITRISK_TRAINING_FOREST_SIZES": "0,50"},
			wantErr: true,
		},
		{
			name:        "malformed yaml",
			fileContent: "logging: [unclosed",
			wantErr:     true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"CREDITRISK_VALIDATION_AGE_MIN": "eighteen"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			file := ""
			if tt.fileContent != "" {
				file = writeFile(t, t.TempDir(), "config.yaml", tt.fileContent)
			}

			cfg, err := LoadFrom(file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetConfigFilePath_Env(t *testing.T) {
	t.Setenv("CREDITRISK_CONFIG", "/etc/creditrisk.yaml")
	assert.Equal(t, "/etc/creditrisk.yaml", getConfigFilePath())
}
