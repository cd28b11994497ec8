package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// RawLoader reads the headerless, space separated dataset file
type RawLoader struct {
	schema domain.Schema
	logger *slog.Logger
}

// NewRawLoader creates a loader that names columns after schema
func NewRawLoader(schema domain.Schema, logger *slog.Logger) *RawLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RawLoader{schema: schema, logger: logger}
}

// Load reads path into a table with the schema's column names.
// Errors are NOT_FOUND for a missing file, PARSING for an unreadable or
// ragged file and SCHEMA_MISMATCH when the field count differs from the schema.
func (l *RawLoader) Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("input file").WithContext("path", path)
		}
		return nil, apperrors.NewParsingError("cannot open input file", err).WithContext("path", path)
	}
	defer f.Close()

	t, err := l.Read(f)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}

	l.logger.Info("raw data loaded",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return t, nil
}

// Read parses records from r
func (l *RawLoader) Read(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = ' '
	reader.FieldsPerRecord = -1

	var records [][]string
	width := -1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to tokenize input", err)
		}
		line, _ := reader.FieldPos(0)

		switch {
		case width == -1:
			width = len(rec)
		case len(rec) < l.schema.Len():
			return nil, apperrors.NewSchemaMismatchError(
				fmt.Sprintf("record has %d fields, expected %d", len(rec), l.schema.Len())).
				WithContext("line", line)
		case len(rec) != width:
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("record has %d fields, previous records have %d", len(rec), width), nil).
				WithContext("line", line)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, apperrors.NewParsingError("input contains no records", nil)
	}
	if width != l.schema.Len() {
		return nil, apperrors.NewSchemaMismatchError(
			fmt.Sprintf("parsed %d columns, expected %d", width, l.schema.Len())).
			WithContext("expected", l.schema.Len()).
			WithContext("actual", width)
	}

	cols := make([]*table.Column, width)
	for j, spec := range l.schema.Columns() {
		cols[j] = buildColumn(spec, records, j)
	}
	return table.New(cols...)
}

// buildColumn infers the column type from its cells: integer when every
// present cell parses as one, categorical otherwise. Empty cells are missing.
func buildColumn(spec domain.ColumnSpec, records [][]string, j int) *table.Column {
	n := len(records)
	null := make([]bool, n)
	strs := make([]string, n)
	ints := make([]int64, n)
	numeric, present := true, 0

	for i, rec := range records {
		cell := rec[j]
		if cell == "" {
			null[i] = true
			continue
		}
		present++
		strs[i] = cell
		if numeric {
			v, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				numeric = false
				continue
			}
			ints[i] = v
		}
	}

	if present == 0 {
		numeric = spec.Kind == domain.KindInteger
	}
	if numeric {
		return table.NewNullableIntColumn(spec.Name, ints, null)
	}
	return table.NewNullableStringColumn(spec.Name, strs, null)
}
