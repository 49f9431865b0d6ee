package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Document errors (restricted YAML subset)
	ErrEmptyDocument ErrorCode = "EMPTY_DOCUMENT"
	ErrParse         ErrorCode = "PARSE"
	ErrDuplicateKey  ErrorCode = "DUPLICATE_KEY"
	ErrMissingKey    ErrorCode = "MISSING_KEY"

	// Manifest errors
	ErrManifestNotFound ErrorCode = "MANIFEST_NOT_FOUND"
	ErrPackageNotFound  ErrorCode = "PACKAGE_NOT_FOUND"
	ErrPackageInvalid   ErrorCode = "PACKAGE_INVALID"
	ErrVersionInvalid   ErrorCode = "VERSION_INVALID"

	// Registry errors
	ErrNetwork ErrorCode = "NETWORK"
	ErrClone   ErrorCode = "CLONE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileCopy     ErrorCode = "FILE_COPY"
	ErrFileDelete   ErrorCode = "FILE_DELETE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// StencilError represents a structured error with code and details
type StencilError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *StencilError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StencilError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *StencilError) Is(target error) bool {
	var targetErr *StencilError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new StencilError with the given code and message
func New(code ErrorCode, message string) *StencilError {
	return &StencilError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new StencilError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *StencilError {
	return &StencilError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a StencilError
func Wrap(err error, code ErrorCode, message string) *StencilError {
	if err == nil {
		return nil
	}
	return &StencilError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *StencilError {
	if err == nil {
		return nil
	}
	return &StencilError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *StencilError) WithDetail(key string, value interface{}) *StencilError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var se *StencilError
	for errors.As(err, &se) {
		if se.Code == code {
			return true
		}
		err = se.Wrapped
		if err == nil {
			return false
		}
	}
	return false
}
