package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "creditrisk/internal/errors"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"data quality", apperrors.NewDataQualityError("duplicates"), ErrorTypeValidation},
		{"schema mismatch", fmt.Errorf("load: %w", apperrors.NewSchemaMismatchError("20 fields")), ErrorTypeValidation},
		{"schema type", apperrors.NewSchemaTypeError("Age", "int64", "string"), ErrorTypeValidation},
		{"not found", apperrors.NewNotFoundError("input file"), ErrorTypeExecution},
		{"storage", apperrors.NewStorageError("disk full", nil), ErrorTypeExecution},
		{"plain", errors.New("boom"), ErrorTypeExecution},
		{"cancelled", context.Canceled, ErrorTypeCancellation},
		{"deadline", fmt.Errorf("step: %w", context.DeadlineExceeded), ErrorTypeCancellation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, "load")
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, "load", got.Step)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestWrapError_KeepsOperationError(t *testing.T) {
	inner := NewExecutionError("", errors.New("boom"))
	got := WrapError(fmt.Errorf("outer: %w", inner), "persist")

	assert.Same(t, inner, got)
	assert.Equal(t, "persist", got.Step)
	assert.Nil(t, WrapError(nil, "x"))
}

func TestOperationError_Error(t *testing.T) {
	err := NewValidationError("validate_raw", "data validation failed", apperrors.NewDataQualityError("3 duplicate rows"))
	assert.Equal(t, "[validation] validate_raw: data validation failed: [DATA_QUALITY] 3 duplicate rows", err.Error())

	fatal := NewFatalError("broken", nil)
	assert.Equal(t, "[fatal] broken", fatal.Error())
}
