package exporter

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
)

// ReadTable loads a CSV file with a header row. A column whose present
// cells all parse as integers becomes an integer column; empty fields are
// missing cells.
func ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("input file").WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("cannot open input file", err).WithContext("path", path)
	}
	defer f.Close()

	t, err := decodeTable(f)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV", err).WithContext("path", path)
	}
	return t, nil
}

func decodeTable(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 && len(header[0]) >= 3 && header[0][:3] == "\xEF\xBB\xBF" {
		header[0] = header[0][3:]
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	cols := make([]*table.Column, len(header))
	for j, name := range header {
		cols[j] = inferColumn(name, records, j)
	}
	return table.New(cols...)
}

func inferColumn(name string, records [][]string, j int) *table.Column {
	n := len(records)
	ints := make([]int64, n)
	strs := make([]string, n)
	null := make([]bool, n)
	numeric := true

	for i, rec := range records {
		cell := rec[j]
		if cell == "" {
			null[i] = true
			continue
		}
		strs[i] = cell
		if !numeric {
			continue
		}
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			numeric = false
			continue
		}
		ints[i] = v
	}

	if numeric {
		return table.NewNullableIntColumn(name, ints, null)
	}
	return table.NewNullableStringColumn(name, strs, null)
}
