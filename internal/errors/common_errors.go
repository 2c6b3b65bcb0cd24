package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the kind of failure a pipeline step reports.
type ErrorType string

const (
	ErrTypeFileOpen    ErrorType = "FILE_OPEN"
	ErrTypeEmptyResult ErrorType = "EMPTY_RESULT"
	ErrTypeEmail       ErrorType = "EMAIL"
	ErrTypeAutomation  ErrorType = "AUTOMATION"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// Severity tells the presentation layer how loudly to surface an error.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
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

// NewFileOpenError reports a bad path or an unreadable/unsupported file.
func NewFileOpenError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFileOpen, message, cause)
}

// NewEmptyResultError reports that an operation produced nothing to show.
func NewEmptyResultError(message string) *AppError {
	return NewAppError(ErrTypeEmptyResult, message, nil)
}

// NewEmailError reports a mail delivery failure.
func NewEmailError(message string, cause error) *AppError {
	return NewAppError(ErrTypeEmail, message, cause)
}

// NewAutomationError reports a failure talking to an external mail service.
func NewAutomationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeAutomation, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType carried by err, or "" when err is not an
// AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries the given ErrorType.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// SeverityOf classifies err for the presentation layer. Empty results are
// warnings; everything else is an error.
func SeverityOf(err error) Severity {
	if IsType(err, ErrTypeEmptyResult) {
		return SeverityWarning
	}
	return SeverityError
}

// UserMessage returns the message meant for the user, without the type tag.
func UserMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	}
	return err.Error()
}
