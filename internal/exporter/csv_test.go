package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
)

func TestCSVWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "german_processed.csv")
	tbl := table.MustNew(
		table.NewIntColumn("Age", []int64{67, 22}),
		table.NewNullableIntColumn("Credit Standing", []int64{0, 0}, []bool{false, true}),
		table.NewIntColumn("Housing_Own", []int64{1, 0}),
	)

	require.NoError(t, NewCSVWriter(nil).WriteTable(path, tbl))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Age,Credit Standing,Housing_Own\n67,0,1\n22,,0\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is gone")
}

func TestCSVWriter_QuotesFieldsWithCommas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := NewCSVWriter(nil).WriteSimpleCSV(path, []string{"name"}, [][]string{{"Telephone_Yes, Registered"}})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name\n\"Telephone_Yes, Registered\"\n", string(content))
}

func TestCSVWriter_BOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	require.NoError(t, NewCSVWriter(nil).WriteCSV(path, WriteOptions{Headers: []string{"a"}, BOMPrefix: true}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, content[:3])

	tbl, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tbl.Names())
}

func TestCSVWriter_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old content\n"), 0644))

	require.NoError(t, NewCSVWriter(nil).WriteSimpleCSV(path, []string{"x"}, [][]string{{"1"}}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(content))
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "encoded.csv")
	require.NoError(t, os.WriteFile(path, []byte("Age,Credit Standing,Note\n30,1,a\n45,,b\n"), 0644))

	tbl, err := ReadTable(path)
	require.NoError(t, err)

	rows, cols := tbl.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	standing, _ := tbl.Column("Credit Standing")
	assert.True(t, standing.IsNumeric())
	assert.True(t, standing.IsNull(1))

	note, _ := tbl.Column("Note")
	assert.False(t, note.IsNumeric())
}

func TestReadTable_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	ragged := filepath.Join(dir, "ragged.csv")
	require.NoError(t, os.WriteFile(ragged, []byte("a,b\n1\n"), 0644))

	tests := []struct {
		name    string
		path    string
		errType apperrors.ErrorType
	}{
		{"missing", filepath.Join(dir, "nope.csv"), apperrors.ErrTypeNotFound},
		{"empty", empty, apperrors.ErrTypeParsing},
		{"ragged", ragged, apperrors.ErrTypeParsing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(tt.path)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rt.csv")
	in := table.MustNew(
		table.NewIntColumn("Duration (in months)", []int64{6, 48}),
		table.NewIntColumn("Purpose_Radio/TV", []int64{1, 0}),
	)
	require.NoError(t, NewCSVWriter(nil).WriteTable(path, in))

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, in.Names(), out.Names())
	assert.Equal(t, in.Records(), out.Records())
}
