package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "creditrisk/internal/errors"
	"creditrisk/pkg/contracts/domain"
)

func TestRawLoader_LoadSingleRecord(t *testing.T) {
	loader := NewRawLoader(domain.GermanCredit(), discardLogger())

	tbl, err := loader.Load(writeRaw(t, sampleRecord))
	require.NoError(t, err)

	rows, cols := tbl.Shape()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 21, cols)
	assert.Equal(t, domain.GermanCredit().Names(), tbl.Names())

	row := tbl.Row(0)
	amount, ok := row.Int(domain.ColCreditAmount)
	require.True(t, ok)
	assert.Equal(t, int64(1169), amount)

	age, ok := row.Int(domain.ColAge)
	require.True(t, ok)
	assert.Equal(t, int64(67), age)

	standing, ok := row.Int(domain.ColCreditStanding)
	require.True(t, ok)
	assert.Equal(t, int64(1), standing)

	assert.Equal(t, "A11", row.Text(domain.ColCheckingAccStatus))
}

func TestRawLoader_InfersKinds(t *testing.T) {
	tbl, err := NewRawLoader(domain.GermanCredit(), discardLogger()).Load(writeRaw(t, sampleRecords...))
	require.NoError(t, err)

	for _, spec := range domain.GermanCredit().Columns() {
		col, ok := tbl.Column(spec.Name)
		require.True(t, ok, spec.Name)
		assert.Equal(t, spec.Kind, col.Kind(), spec.Name)
	}
}

func TestRawLoader_Errors(t *testing.T) {
	short := strings.Join(strings.Fields(sampleRecord)[:20], " ")
	long := sampleRecord + " 9"

	tests := []struct {
		name    string
		lines   []string
		missing bool
		errType apperrors.ErrorType
	}{
		{name: "missing file", missing: true, errType: apperrors.ErrTypeNotFound},
		{name: "empty file", lines: []string{""}, errType: apperrors.ErrTypeParsing},
		{name: "single short record", lines: []string{short}, errType: apperrors.ErrTypeSchemaMismatch},
		{name: "short record after valid one", lines: []string{sampleRecord, short}, errType: apperrors.ErrTypeSchemaMismatch},
		{name: "consistently wide records", lines: []string{long, long}, errType: apperrors.ErrTypeSchemaMismatch},
		{name: "ragged wide record", lines: []string{sampleRecord, long}, errType: apperrors.ErrTypeParsing},
		{name: "unterminated quote", lines: []string{`A11 "6 A34`}, errType: apperrors.ErrTypeParsing},
	}

	loader := NewRawLoader(domain.GermanCredit(), discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "does/not/exist.data"
			if !tt.missing {
				path = writeRaw(t, tt.lines...)
			}

			tbl, err := loader.Load(path)
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestRawLoader_NonNumericValueKeepsText(t *testing.T) {
	fields := strings.Fields(sampleRecord)
	fields[12] = "sixty"

	tbl, err := NewRawLoader(domain.GermanCredit(), discardLogger()).
		Load(writeRaw(t, sampleRecord, strings.Join(fields, " ")))
	require.NoError(t, err)

	age, _ := tbl.Column(domain.ColAge)
	assert.Equal(t, domain.KindCategorical, age.Kind())
	assert.Equal(t, "sixty", age.Text(1))
}

func TestRawLoader_EmptyFieldIsMissing(t *testing.T) {
	fields := strings.Fields(sampleRecord)
	fields[4] = ""

	tbl, err := NewRawLoader(domain.GermanCredit(), discardLogger()).
		Load(writeRaw(t, sampleRecord, strings.Join(fields, " ")))
	require.NoError(t, err)

	amount, _ := tbl.Column(domain.ColCreditAmount)
	assert.True(t, amount.IsNumeric())
	assert.Equal(t, 1, amount.NullCount())
	assert.True(t, amount.IsNull(1))
}
