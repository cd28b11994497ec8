package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "CREDITRISK"

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Download   DownloadConfig   `yaml:"download" envconfig:"DOWNLOAD"`
	Validation ValidationConfig `yaml:"validation" envconfig:"VALIDATION"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	Training   TrainingConfig   `yaml:"training" envconfig:"TRAINING"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains default locations of every stage's inputs and outputs.
// Relative paths are resolved against the working directory.
type PathsConfig struct {
	RawDataFile   string `yaml:"raw_data_file" envconfig:"RAW_DATA_FILE" validate:"required"`
	ProcessedFile string `yaml:"processed_file" envconfig:"PROCESSED_FILE" validate:"required"`
	EDADir        string `yaml:"eda_dir" envconfig:"EDA_DIR" validate:"required"`
	ModelsDir     string `yaml:"models_dir" envconfig:"MODELS_DIR" validate:"required"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	MappingsFile  string `yaml:"mappings_file" envconfig:"MAPPINGS_FILE"`
}

// DownloadConfig configures the raw data download stage
type DownloadConfig struct {
	URL     string        `yaml:"url" envconfig:"URL" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// ValidationConfig holds the thresholds used by the preprocessing checks
type ValidationConfig struct {
	AgeMin                int64   `yaml:"age_min" envconfig:"AGE_MIN" validate:"gte=0"`
	AgeMax                int64   `yaml:"age_max" envconfig:"AGE_MAX" validate:"gtfield=AgeMin"`
	ClassBalanceThreshold float64 `yaml:"class_balance_threshold" envconfig:"CLASS_BALANCE_THRESHOLD" validate:"gt=0,lte=1"`
	CreditAmountOutlier   int64   `yaml:"credit_amount_outlier" envconfig:"CREDIT_AMOUNT_OUTLIER" validate:"gt=0"`
	MinTargetCorrelation  float64 `yaml:"min_target_correlation" envconfig:"MIN_TARGET_CORRELATION" validate:"gte=0,lte=1"`
	Concurrent            bool    `yaml:"concurrent" envconfig:"CONCURRENT"`
}

// TelemetryConfig configures tracing and metrics output
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// TrainingConfig configures the model training stage
type TrainingConfig struct {
	TestRatio       float64 `yaml:"test_ratio" envconfig:"TEST_RATIO" validate:"gt=0,lt=1"`
	ValidationRatio float64 `yaml:"validation_ratio" envconfig:"VALIDATION_RATIO" validate:"gt=0,lt=1"`
	Neighbours      []int   `yaml:"neighbours" envconfig:"NEIGHBOURS" validate:"min=1,dive,gt=0"`
	ForestSizes     []int   `yaml:"forest_sizes" envconfig:"FOREST_SIZES" validate:"min=1,dive,gt=0"`
	Seed            int64   `yaml:"seed" envconfig:"SEED"`
}

// Load builds the configuration from defaults, then the YAML config file
// if one is found, then environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file; an empty path skips the file
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/creditrisk.log",
		},
		Paths: PathsConfig{
			RawDataFile:   "data/raw/raw_data.csv",
			ProcessedFile: "data/processed/german_processed.csv",
			EDADir:        "results/eda",
			ModelsDir:     "results/models",
			LogsDir:       "logs",
		},
		Download: DownloadConfig{
			URL:     "https://archive.ics.uci.edu/ml/machine-learning-databases/statlog/german/german.data",
			Timeout: 60 * time.Second,
		},
		Validation: ValidationConfig{
			AgeMin:                18,
			AgeMax:                100,
			ClassBalanceThreshold: 0.9,
			CreditAmountOutlier:   100000,
			MinTargetCorrelation:  0.01,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
		Training: TrainingConfig{
			TestRatio:       0.25,
			ValidationRatio: 0.2,
			Neighbours:      []int{3, 5, 7, 9, 11, 13, 15},
			ForestSizes:     []int{50, 100, 200},
			Seed:            42,
		},
	}
}
