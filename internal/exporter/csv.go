package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to filePath atomically: rows go to a temporary file
// in the same directory which replaces filePath only when fully written.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError("failed to create temporary file", err).WithContext("path", filePath)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := writeRecords(tmp, options); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("failed to write CSV", err).WithContext("path", filePath)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close temporary file", err).WithContext("path", filePath)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return apperrors.NewStorageError("failed to move CSV into place", err).WithContext("path", filePath)
	}

	w.logger.Info("CSV file written",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))
	return nil
}

func writeRecords(f *os.File, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(f)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSimpleCSV writes a CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
	})
}

// WriteTable writes t with its column names as the header row.
// Missing cells are written as empty fields.
func (w *CSVWriter) WriteTable(filePath string, t *table.Table) error {
	return w.WriteSimpleCSV(filePath, t.Names(), t.Records())
}
