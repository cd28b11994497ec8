package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "creditrisk/internal/errors"
)

// FileValidator checks stage inputs and outputs before any work starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator; nil logger means slog's default
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateFile checks that path can be opened as a regular file
func (v *FileValidator) ValidateFile(path string) error {
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return v.reject(path, apperrors.NewNotFoundError("input file").WithContext("path", path))
	case err != nil:
		return v.reject(path, apperrors.NewStorageError("input file is not readable", err).WithContext("path", path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return v.reject(path, apperrors.NewStorageError("failed to stat input file", err).WithContext("path", path))
	}
	if info.IsDir() {
		return v.reject(path, apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)))
	}

	v.logger.Debug("input_file_ok", slog.String("path", path), slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile is ValidateFile plus a case-insensitive .csv extension check
func (v *FileValidator) ValidateCSVFile(path string) error {
	if ext := filepath.Ext(path); !strings.EqualFold(ext, ".csv") {
		return v.reject(path, apperrors.NewAppValidationError(
			fmt.Sprintf("%s is not a CSV file", path)).WithContext("extension", ext))
	}
	return v.ValidateFile(path)
}

// ValidateOutputDirectory creates dir if needed and proves it is writable
// by creating and removing a scratch file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return v.reject(dir, apperrors.NewStorageError("failed to create output directory", err).WithContext("path", dir))
	}

	scratch, err := os.CreateTemp(dir, ".writecheck-*")
	if err != nil {
		return v.reject(dir, apperrors.NewStorageError("output directory is not writable", err).WithContext("path", dir))
	}
	name := scratch.Name()
	scratch.Close()
	if err := os.Remove(name); err != nil {
		return v.reject(dir, apperrors.NewStorageError("failed to remove scratch file", err).WithContext("path", name))
	}

	v.logger.Debug("output_dir_ok", slog.String("path", dir))
	return nil
}

func (v *FileValidator) reject(path string, err *apperrors.AppError) error {
	v.logger.Error("path_rejected", slog.String("path", path), slog.String("error", err.Error()))
	return err
}
