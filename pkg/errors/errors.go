package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType int

// Domain errors - bad input and lookups
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidConfig
	ErrorTypeNotFound

	// Infrastructure Errors - cache media and the forecast provider
	ErrorTypeCacheIO
	ErrorTypeFetch
	ErrorTypeExternalAPI

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeInvalidConfig:
		return "INVALID_CONFIG_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeCacheIO:
		return "CACHE_IO_ERROR"
	case ErrorTypeFetch:
		return "FETCH_ERROR"
	case ErrorTypeExternalAPI:
		return "EXTERNAL_API_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain Error Constructors
func NewInvalidConfigError(message string) *AppError {
	return New(ErrorTypeInvalidConfig, message)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrorTypeNotFound, message)
}

// Infrastructure Error Constructors
func NewCacheIOError(message string, cause error) *AppError {
	return Wrap(ErrorTypeCacheIO, message, cause)
}

// NewFetchError reports a failed call to the forecast fetch capability.
// The cause is kept so callers can still match provider-specific errors.
func NewFetchError(message string, cause error) *AppError {
	return Wrap(ErrorTypeFetch, message, cause)
}

func NewExternalAPIError(message string, cause error) *AppError {
	return Wrap(ErrorTypeExternalAPI, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeConfiguration, message, cause)
}

// TypeOf returns the type of the outermost AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Helper functions for error type checking
func IsInvalidConfigError(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidConfig
}

func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

func IsCacheIOError(err error) bool {
	return TypeOf(err) == ErrorTypeCacheIO
}

func IsFetchError(err error) bool {
	return TypeOf(err) == ErrorTypeFetch
}

func IsExternalAPIError(err error) bool {
	return TypeOf(err) == ErrorTypeExternalAPI
}

func IsConfigurationError(err error) bool {
	return TypeOf(err) == ErrorTypeConfiguration
}
