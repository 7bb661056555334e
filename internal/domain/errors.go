// Package domain defines core types, interfaces, and errors for the query and ingestion service.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// UnauthenticatedError indicates missing or invalid credentials.
type UnauthenticatedError struct {
	Code    string
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StrategyNotFoundError indicates that no query strategy or stored view
// matches the requested view name.
type StrategyNotFoundError struct {
	View string
}

func (e *StrategyNotFoundError) Error() string {
	return fmt.Sprintf("View '%s' not found", e.View)
}

// UnsupportedTaskTypeError indicates an unknown task type selector.
type UnsupportedTaskTypeError struct {
	TaskType string
}

func (e *UnsupportedTaskTypeError) Error() string {
	return fmt.Sprintf("Unsupported task type: %s", e.TaskType)
}

// DatabaseError indicates that an external database could not be reached
// or its connection profile could not be turned into a connection.
type DatabaseError struct {
	Message string
	Err     error
}

func (e *DatabaseError) Error() string { return joinCause(e.Message, e.Err) }

func (e *DatabaseError) Unwrap() error { return e.Err }

// ConnectionFailedError indicates a short-lived task connection failed.
type ConnectionFailedError struct {
	Message string
	Err     error
}

func (e *ConnectionFailedError) Error() string { return joinCause(e.Message, e.Err) }

func (e *ConnectionFailedError) Unwrap() error { return e.Err }

// ExecutionError indicates a statement failed at the external system.
type ExecutionError struct {
	Message string
	Err     error
}

func (e *ExecutionError) Error() string { return joinCause(e.Message, e.Err) }

func (e *ExecutionError) Unwrap() error { return e.Err }

func joinCause(msg string, err error) string {
	if err == nil {
		return msg
	}
	return msg + ": " + err.Error()
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnauthenticated creates an UnauthenticatedError with a machine-readable code.
func ErrUnauthenticated(code, format string, args ...interface{}) *UnauthenticatedError {
	return &UnauthenticatedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrDatabase creates a DatabaseError wrapping cause.
func ErrDatabase(cause error, format string, args ...interface{}) *DatabaseError {
	return &DatabaseError{Message: fmt.Sprintf(format, args...), Err: cause}
}

// ErrConnectionFailed creates a ConnectionFailedError wrapping cause.
func ErrConnectionFailed(cause error, format string, args ...interface{}) *ConnectionFailedError {
	return &ConnectionFailedError{Message: fmt.Sprintf(format, args...), Err: cause}
}

// ErrExecution creates an ExecutionError wrapping cause.
func ErrExecution(cause error, format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...), Err: cause}
}
