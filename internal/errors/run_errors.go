package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Fatal errors that abort the run before any output is produced
	ErrorCategoryDataLoad      ErrorCategory = "DATA_LOAD"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Validation errors on individual inputs
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
)

// RunError represents a categorized error with context
type RunError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s in %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s in %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *RunError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error should abort the run
func (e *RunError) IsFatal() bool {
	return e.Category == ErrorCategoryDataLoad ||
		e.Category == ErrorCategoryConfiguration
}

// WithContext adds context information to the error
func (e *RunError) WithContext(key string, value interface{}) *RunError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewRunError creates a new categorized run error
func NewRunError(category ErrorCategory, component, operation, message string) *RunError {
	return &RunError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with run error context
func WrapError(err error, category ErrorCategory, component, operation string) *RunError {
	if err == nil {
		return nil
	}

	return &RunError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// Common error constructors
func NewDataLoadError(component, operation string, err error) *RunError {
	return WrapError(err, ErrorCategoryDataLoad, component, operation)
}

func NewDataLoadErrorf(component, operation, format string, args ...interface{}) *RunError {
	return NewRunError(ErrorCategoryDataLoad, component, operation, fmt.Sprintf(format, args...))
}

func NewConfigurationError(component, operation, message string) *RunError {
	return NewRunError(ErrorCategoryConfiguration, component, operation, message)
}

func NewValidationError(component, operation, message string) *RunError {
	return NewRunError(ErrorCategoryValidation, component, operation, message)
}

// IsDataLoadError reports whether err is a DATA_LOAD run error
func IsDataLoadError(err error) bool {
	var runErr *RunError
	return errors.As(err, &runErr) && runErr.Category == ErrorCategoryDataLoad
}

// IsConfigurationError reports whether err is a CONFIG run error
func IsConfigurationError(err error) bool {
	var runErr *RunError
	return errors.As(err, &runErr) && runErr.Category == ErrorCategoryConfiguration
}

// IsValidationError reports whether err is a VALIDATION run error
func IsValidationError(err error) bool {
	var runErr *RunError
	return errors.As(err, &runErr) && runErr.Category == ErrorCategoryValidation
}
