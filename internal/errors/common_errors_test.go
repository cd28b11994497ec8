package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAppError(ErrTypeParsing, "failed to parse file", nil),
			wantMessage: "[PARSING] failed to parse file",
		},
		{
			name:        "error with cause",
			appError:    NewAppError(ErrTypeStorage, "write failed", fmt.Errorf("disk full")),
			wantMessage: "[STORAGE] write failed: disk full",
		},
		{
			name: "context keys are sorted",
			appError: NewDataQualityError("class imbalance").
				WithContext("threshold", 0.9).
				WithContext("column", "Credit Standing"),
			wantMessage: "[DATA_QUALITY] class imbalance (column=Credit Standing, threshold=0.9)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestSchemaTypeError(t *testing.T) {
	err := NewSchemaTypeError("Age", "int64", "string")

	assert.Equal(t, ErrTypeSchemaType, err.Type)
	assert.Equal(t, "Age", err.Context["column"])
	assert.Equal(t, "int64", err.Context["expected"])
	assert.Equal(t, "string", err.Context["actual"])
	assert.Contains(t, err.Error(), `column "Age" has type string, expected int64`)
}

func TestIsType(t *testing.T) {
	notFound := NewNotFoundError("input file data/raw.csv")
	wrapped := fmt.Errorf("loading: %w", notFound)
	nested := NewParsingError("outer", NewSchemaMismatchError("inner"))

	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"direct match", notFound, ErrTypeNotFound, true},
		{"wrapped match", wrapped, ErrTypeNotFound, true},
		{"different type", notFound, ErrTypeParsing, false},
		{"nested cause match", nested, ErrTypeSchemaMismatch, true},
		{"plain error", errors.New("boom"), ErrTypeNotFound, false},
		{"nil error", nil, ErrTypeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestTypeOfAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("download: %w", NewNetworkError("GET failed", cause))

	errType, ok := TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrTypeNetwork, errType)
	assert.True(t, errors.Is(err, cause))

	_, ok = TypeOf(errors.New("plain"))
	assert.False(t, ok)
}
