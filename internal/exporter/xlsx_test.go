package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "validation.xlsx")

	err := WriteWorkbook(path,
		Sheet{
			Name:    "raw",
			Headers: []string{"check", "passed"},
			Rows:    [][]interface{}{{"duplicates", true}, {"missing_values", false}},
		},
		Sheet{
			Name:    "encoded",
			Headers: []string{"check", "passed"},
			Rows:    [][]interface{}{{"class_balance", true}},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"raw", "encoded"}, f.GetSheetList())

	rows, err := f.GetRows("raw")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"check", "passed"},
		{"duplicates", "TRUE"},
		{"missing_values", "FALSE"},
	}, rows)
}

func TestWriteWorkbook_NoSheets(t *testing.T) {
	assert.Error(t, WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx")))
}
