// Package contextutils provides error handling utilities and standardized error types
// for consistent error management across the trivia API.
package contextutils

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a standardized error code for API responses
type ErrorCode string

const (
	// Database error codes

	// ErrorCodeDatabaseConnection indicates a database connection error
	ErrorCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_ERROR"
	// ErrorCodeDatabaseQuery indicates a database query error
	ErrorCodeDatabaseQuery ErrorCode = "DATABASE_QUERY_ERROR"
	// ErrorCodeRecordNotFound indicates that a requested record was not found
	ErrorCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// Validation error codes

	// ErrorCodeInvalidInput indicates that the provided input is invalid
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeValidationFailed indicates that validation has failed
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrorCodeInvalidPage indicates a page number past the end of a non-empty result set
	ErrorCodeInvalidPage ErrorCode = "INVALID_PAGE"
	// ErrorCodeUnprocessable indicates a well-formed request the store could not process
	ErrorCodeUnprocessable ErrorCode = "UNPROCESSABLE"
	// ErrorCodeMethodNotAllowed indicates the route exists but not for this method
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	// Service error codes

	// ErrorCodeServiceUnavailable indicates that the service is temporarily unavailable
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError ErrorCode = "INTERNAL_SERVER_ERROR"

	// Trivia error codes

	// ErrorCodeQuestionNotFound indicates that the requested question was not found
	ErrorCodeQuestionNotFound ErrorCode = "QUESTION_NOT_FOUND"
	// ErrorCodeCategoryNotFound indicates that the requested category was not found
	ErrorCodeCategoryNotFound ErrorCode = "CATEGORY_NOT_FOUND"
	// ErrorCodeNoCategories indicates that the category table is empty
	ErrorCodeNoCategories ErrorCode = "NO_CATEGORIES"
	// ErrorCodeNoQuestionsAvailable indicates that the quiz candidate set is empty
	ErrorCodeNoQuestionsAvailable ErrorCode = "NO_QUESTIONS_AVAILABLE"
)

// SeverityLevel represents the severity of an error for logging and monitoring
type SeverityLevel string

const (
	// SeverityDebug indicates debug-level errors for development
	SeverityDebug SeverityLevel = "debug"
	// SeverityInfo indicates informational errors
	SeverityInfo SeverityLevel = "info"
	// SeverityWarn indicates warning-level errors
	SeverityWarn SeverityLevel = "warn"
	// SeverityError indicates error-level issues
	SeverityError SeverityLevel = "error"
	// SeverityFatal indicates fatal errors that require immediate attention
	SeverityFatal SeverityLevel = "fatal"
)

// AppError represents a structured error with code, severity, and context
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

// Error types for consistent error handling with associated codes and severity
var (
	// Database errors
	ErrDatabaseConnection = &AppError{
		Code:     ErrorCodeDatabaseConnection,
		Severity: SeverityError,
		Message:  "Database connection failed",
	}

	ErrDatabaseQuery = &AppError{
		Code:     ErrorCodeDatabaseQuery,
		Severity: SeverityError,
		Message:  "Database query failed",
	}

	ErrRecordNotFound = &AppError{
		Code:     ErrorCodeRecordNotFound,
		Severity: SeverityInfo,
		Message:  "Record not found",
	}

	// Validation errors
	ErrInvalidInput = &AppError{
		Code:     ErrorCodeInvalidInput,
		Severity: SeverityWarn,
		Message:  "Invalid input",
	}

	ErrValidationFailed = &AppError{
		Code:     ErrorCodeValidationFailed,
		Severity: SeverityWarn,
		Message:  "Validation failed",
	}

	ErrInvalidPage = &AppError{
		Code:     ErrorCodeInvalidPage,
		Severity: SeverityInfo,
		Message:  "Page out of range",
	}

	ErrUnprocessable = &AppError{
		Code:     ErrorCodeUnprocessable,
		Severity: SeverityWarn,
		Message:  "Request could not be processed",
	}

	ErrMethodNotAllowed = &AppError{
		Code:     ErrorCodeMethodNotAllowed,
		Severity: SeverityInfo,
		Message:  "Method not allowed",
	}

	// Service errors
	ErrServiceUnavailable = &AppError{
		Code:     ErrorCodeServiceUnavailable,
		Severity: SeverityError,
		Message:  "Service unavailable",
	}

	ErrInternalError = &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  "Internal server error",
	}

	// Trivia errors
	ErrQuestionNotFound = &AppError{
		Code:     ErrorCodeQuestionNotFound,
		Severity: SeverityInfo,
		Message:  "Question not found",
	}

	ErrCategoryNotFound = &AppError{
		Code:     ErrorCodeCategoryNotFound,
		Severity: SeverityInfo,
		Message:  "Category not found",
	}

	ErrNoCategories = &AppError{
		Code:     ErrorCodeNoCategories,
		Severity: SeverityWarn,
		Message:  "No categories available",
	}

	ErrNoQuestionsAvailable = &AppError{
		Code:     ErrorCodeNoQuestionsAvailable,
		Severity: SeverityInfo,
		Message:  "No questions available for the quiz",
	}
)

// NewAppError creates a new AppError with the specified code, severity, message and details
func NewAppError(code ErrorCode, severity SeverityLevel, message, details string) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
	}
}

// NewAppErrorWithCause creates a new AppError with an underlying cause
func NewAppErrorWithCause(code ErrorCode, severity SeverityLevel, message, details string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
		Cause:    cause,
	}
}

// WrapError wraps an error with additional context, preserving AppError structure if possible
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:     appErr.Code,
			Severity: appErr.Severity,
			Message:  context,
			Details:  err.Error(),
			Cause:    err,
		}
	}

	// For regular errors, create a generic internal error wrapper
	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  context,
		Details:  err.Error(),
		Cause:    err,
	}
}

// WrapErrorf wraps an error with formatted context, preserving AppError structure if possible
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	// Handle %w verb for error wrapping by using fmt.Errorf
	if strings.Contains(format, "%w") {
		wrappedErr := fmt.Errorf(format, args...)

		var appErr *AppError
		if errors.As(err, &appErr) {
			return &AppError{
				Code:     appErr.Code,
				Severity: appErr.Severity,
				Message:  wrappedErr.Error(),
				Details:  err.Error(),
				Cause:    wrappedErr,
			}
		}

		return &AppError{
			Code:     ErrorCodeInternalError,
			Severity: SeverityError,
			Message:  wrappedErr.Error(),
			Details:  err.Error(),
			Cause:    wrappedErr,
		}
	}

	context := fmt.Sprintf(format, args...)
	return WrapError(err, context)
}

// ErrorWithContextf creates a new error with formatted context
func ErrorWithContextf(format string, args ...interface{}) error {
	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsError checks if an error (or anything it wraps) matches a specific AppError type
func IsError(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// AsError attempts to convert an error to an AppError
func AsError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// GetErrorCode returns the error code from an error if it's an AppError, otherwise returns a default code
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

// GetErrorSeverity returns the severity level from an error if it's an AppError, otherwise returns error
func GetErrorSeverity(err error) SeverityLevel {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Severity
	}
	return SeverityError
}

// IsRetryable determines if an error should be retried based on its type and severity
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrorCodeServiceUnavailable, ErrorCodeDatabaseConnection:
			return appErr.Severity != SeverityFatal
		}
	}
	return false
}

// ToJSON converts an AppError to a JSON-serializable structure for logs and diagnostics
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":      string(e.Code),
		"message":   e.Message,
		"severity":  string(e.Severity),
		"retryable": IsRetryable(e),
	}

	if e.Details != "" {
		result["details"] = e.Details
	}

	if e.Cause != nil {
		switch e.Severity {
		case SeverityError, SeverityFatal:
			result["cause"] = e.Cause.Error()
		}
	}

	return result
}

// ContextKey represents a context key type for passing values through context
type ContextKey string

const (
	// RequestIDKey is used to store the request id in context for log correlation
	RequestIDKey ContextKey = "requestID"
)

// GetRequestIDFromContext extracts the request id from context, returning "" if not found
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a new context with the request id set
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
