// Package errortypes provides the error taxonomy for the symbol store proxy.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType string

// Error types
const (
	// ErrorTypeInvalidArgument indicates caller-supplied input failed local
	// or upstream validation.
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"

	// ErrorTypeNotFound indicates the requested resource does not exist upstream.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeRemote indicates a network failure, timeout, or any other
	// non-2xx response from the upstream symbol store.
	ErrorTypeRemote ErrorType = "remote"

	// ErrorTypeConfiguration indicates missing or malformed configuration.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeInternal indicates a bug in this process.
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents an application error with context
type AppError struct {
	Err       error
	Type      ErrorType
	Message   string
	StackInfo string
	Fields    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

// Unwrap unwraps the error to support errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField adds a field to the error for additional context
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error for additional context
func (e *AppError) WithFields(fields map[string]interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// captureStack captures the stack trace at the call site
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		// Skip testing and standard library frames
		if !strings.Contains(frame.File, "testing/") && !strings.Contains(frame.File, "/go/src/") {
			fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return builder.String()
}

// newAppError creates a new AppError with the given type, underlying error, and message
func newAppError(errType ErrorType, err error, message string) *AppError {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &AppError{
		Err:       err,
		Type:      errType,
		Message:   message,
		StackInfo: captureStack(),
		Fields:    make(map[string]interface{}),
	}
}

// InvalidArgumentError creates a new invalid argument error
func InvalidArgumentError(err error, message string) *AppError {
	return newAppError(ErrorTypeInvalidArgument, err, message)
}

// NotFoundError creates a new not found error
func NotFoundError(err error, message string) *AppError {
	return newAppError(ErrorTypeNotFound, err, message)
}

// RemoteError creates a new remote error
func RemoteError(err error, message string) *AppError {
	return newAppError(ErrorTypeRemote, err, message)
}

// ConfigurationError creates a new configuration error
func ConfigurationError(err error, message string) *AppError {
	return newAppError(ErrorTypeConfiguration, err, message)
}

// InternalError creates a new internal error
func InternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeInternal, err, message)
}

// LogError logs an AppError using the provided slog.Logger or the default slog logger.
// It logs the error message, type, stack trace, and any associated fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		args := []any{
			"type", string(appErr.Type),
			"original_error", appErr.Err.Error(),
		}
		if appErr.StackInfo != "" {
			args = append(args, "stack", appErr.StackInfo)
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		logger.Error(appErr.Message, args...)
	} else {
		logger.Error(err.Error(), "error", err)
	}
}

// TypeOf returns the taxonomy type of an error, or ErrorTypeInternal for
// errors that are not AppErrors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsInvalidArgumentError checks if an error is an invalid argument error
func IsInvalidArgumentError(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidArgument
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsRemoteError checks if an error is a remote error
func IsRemoteError(err error) bool {
	return TypeOf(err) == ErrorTypeRemote
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return TypeOf(err) == ErrorTypeConfiguration
}
