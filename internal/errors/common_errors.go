package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeSchemaMismatch ErrorType = "SCHEMA_MISMATCH"
	ErrTypeSchemaType     ErrorType = "SCHEMA_TYPE"
	ErrTypeDataQuality    ErrorType = "DATA_QUALITY"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeNetwork        ErrorType = "NETWORK"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface. Context keys are appended in
// sorted order so messages are stable.
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, e.Context[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether any error in err's chain is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if stderrors.As(err, &appErr) {
			if appErr.Type == errType {
				return true
			}
			err = appErr.Cause
			continue
		}
		return false
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// Helper functions for common error types

// NewNotFoundError creates a not found error for a file or resource
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaMismatchError reports a structural schema violation
func NewSchemaMismatchError(message string) *AppError {
	return NewAppError(ErrTypeSchemaMismatch, message, nil)
}

// NewSchemaTypeError reports a column whose type differs from the expected one
func NewSchemaTypeError(column string, expected, actual interface{}) *AppError {
	return NewAppError(ErrTypeSchemaType,
		fmt.Sprintf("column %q has type %v, expected %v", column, actual, expected), nil).
		WithContext("column", column).
		WithContext("expected", expected).
		WithContext("actual", actual)
}

// NewDataQualityError creates a data quality error
func NewDataQualityError(message string) *AppError {
	return NewAppError(ErrTypeDataQuality, message, nil)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}
