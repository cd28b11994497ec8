package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations used by the stages.
// It is the single source of truth for default inputs and outputs.
type Paths struct {
	BaseDir       string
	RawDataFile   string
	ProcessedFile string
	EDADir        string
	ModelsDir     string
	LogsDir       string
	MappingsFile  string
}

// GetPaths resolves the configured paths against baseDir.
// An empty baseDir means the current working directory.
func (c *Config) GetPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	return &Paths{
		BaseDir:       baseDir,
		RawDataFile:   resolve(c.Paths.RawDataFile),
		ProcessedFile: resolve(c.Paths.ProcessedFile),
		EDADir:        resolve(c.Paths.EDADir),
		ModelsDir:     resolve(c.Paths.ModelsDir),
		LogsDir:       resolve(c.Paths.LogsDir),
		MappingsFile:  resolve(c.Paths.MappingsFile),
	}, nil
}

// LogPathResolution logs every resolved path at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("raw_data_file", p.RawDataFile),
		slog.String("processed_file", p.ProcessedFile),
		slog.String("eda_dir", p.EDADir),
		slog.String("models_dir", p.ModelsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("mappings_file", p.MappingsFile))
}

// EnsureDir creates dir and its parents if they don't exist
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// EnsureParentDir creates the directory that will hold file
func EnsureParentDir(file string) error {
	return EnsureDir(filepath.Dir(file))
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
