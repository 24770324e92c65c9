package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeRender     ErrorType = "RENDER"
)

// Pipeline stages used to label errors.
const (
	StageAcquisition   = "acquisition"
	StageScoring       = "scoring"
	StageVisualization = "visualization"
)

// AppError represents an application-specific error. Stage and Series
// identify where a pipeline run failed so the exit message can name both.
type AppError struct {
	Type    ErrorType
	Stage   string
	Series  string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Type)
	if e.Stage != "" {
		fmt.Fprintf(&b, " stage=%s", e.Stage)
	}
	if e.Series != "" {
		fmt.Fprintf(&b, " series=%s", e.Series)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
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

// WithSeries labels the error with the series it concerns
func (e *AppError) WithSeries(series string) *AppError {
	e.Series = series
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, stage, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, "", message, cause)
}

// NewNetworkError creates a network-related error
func NewNetworkError(stage, series, message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, stage, message, cause).WithSeries(series)
}

// NewParsingError creates a parsing-related error
func NewParsingError(stage, series, message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, stage, message, cause).WithSeries(series)
}

// NewStorageError creates a storage-related error
func NewStorageError(stage, message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, stage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(stage, series, message string) *AppError {
	return NewAppError(ErrTypeValidation, stage, message, nil).WithSeries(series)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(stage, resource string) *AppError {
	return NewAppError(ErrTypeNotFound, stage, fmt.Sprintf("%s not found", resource), nil)
}

// NewRenderError creates a chart rendering error
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, StageVisualization, message, cause)
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether any AppError in the chain has the given type
func IsType(err error, errType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == errType
}

// StageOf returns the stage recorded on the first AppError in the chain
func StageOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Stage
	}
	return ""
}

// SeriesOf returns the series recorded on the first AppError in the chain
func SeriesOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Series
	}
	return ""
}
