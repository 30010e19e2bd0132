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
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Path errors
	ErrPathEscape  ErrorCode = "PATH_ESCAPE"
	ErrPathInvalid ErrorCode = "PATH_INVALID"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileEncode   ErrorCode = "FILE_ENCODE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Source map errors
	ErrSourceMapParse ErrorCode = "SOURCEMAP_PARSE"

	// Pipeline errors
	ErrPlugNotFound ErrorCode = "PLUG_NOT_FOUND"
	ErrPlugInvalid  ErrorCode = "PLUG_INVALID"
	ErrTaskNotFound ErrorCode = "TASK_NOT_FOUND"
	ErrTaskLoad     ErrorCode = "TASK_LOAD"

	// Build errors
	ErrBuildFailed ErrorCode = "BUILD_FAILED"
)

// PlugsError represents a structured error with code and details
type PlugsError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PlugsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PlugsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PlugsError) Is(target error) bool {
	var targetErr *PlugsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PlugsError with the given code and message
func New(code ErrorCode, message string) *PlugsError {
	return &PlugsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PlugsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PlugsError {
	return &PlugsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PlugsError
func Wrap(err error, code ErrorCode, message string) *PlugsError {
	if err == nil {
		return nil
	}
	return &PlugsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PlugsError {
	if err == nil {
		return nil
	}
	return &PlugsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PlugsError) WithDetail(key string, value interface{}) *PlugsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PlugsError) WithDetails(details map[string]interface{}) *PlugsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var plugsErr *PlugsError
	if errors.As(err, &plugsErr) {
		return plugsErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PlugsError
func GetErrorCode(err error) ErrorCode {
	var plugsErr *PlugsError
	if errors.As(err, &plugsErr) {
		return plugsErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PlugsError
func GetErrorDetails(err error) map[string]interface{} {
	var plugsErr *PlugsError
	if errors.As(err, &plugsErr) {
		return plugsErr.Details
	}
	return nil
}
