// Package errors provides structured error handling for the dikit runtime.
// It implements error types with machine-readable codes, HTTP status mapping
// for framework adapters, and helpers for code-based error matching.
package errors

import (
	"fmt"
	"net/http"
)

// Error is the structured error type used across dikit.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code, message and HTTP status.
func New(code ErrorCode, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Configuration error constructors ---

// DuplicateProvider creates an Error for a second registration of an
// interface without explicit override intent.
func DuplicateProvider(iface string) *Error {
	return &Error{
		Code: ErrCodeDuplicateProvider, Message: fmt.Sprintf("provider for %q is already registered", iface),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"interface": iface},
	}
}

// InvalidScope creates an Error for an invalid scope nesting between a
// provider and one of its dependencies.
func InvalidScope(iface, scope, dependency, dependencyScope string) *Error {
	return &Error{
		Code: ErrCodeInvalidScope, Message: fmt.Sprintf("provider for %q with scope %q cannot depend on %q with scope %q", iface, scope, dependency, dependencyScope),
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]any{
			"interface":        iface,
			"scope":            scope,
			"dependency":       dependency,
			"dependency_scope": dependencyScope,
		},
	}
}

// CircularDependency creates an Error for a cycle in the provider graph.
// The chain names the interfaces along the cycle in resolution order.
func CircularDependency(chain string) *Error {
	return &Error{
		Code: ErrCodeCircularDependency, Message: fmt.Sprintf("circular dependency detected: %s", chain),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"chain": chain},
	}
}

// InvalidProvider creates an Error for a malformed provider registration.
func InvalidProvider(iface, reason string) *Error {
	return &Error{
		Code: ErrCodeInvalidProvider, Message: fmt.Sprintf("invalid provider for %q: %s", iface, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"interface": iface},
	}
}

// --- Resolution error constructors ---

// ProviderNotFound creates an Error for an unregistered interface.
func ProviderNotFound(iface string) *Error {
	return &Error{
		Code: ErrCodeProviderNotFound, Message: fmt.Sprintf("no provider registered for %q", iface),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"interface": iface},
	}
}

// ScopeNotStarted creates an Error for a resolution requiring a scope that
// has not been started.
func ScopeNotStarted(scope string) *Error {
	return &Error{
		Code: ErrCodeScopeNotStarted, Message: fmt.Sprintf("the %q scope is not started", scope),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"scope": scope},
	}
}

// SynchronousMode creates an Error for a synchronous resolution of a
// context-aware provider.
func SynchronousMode(iface string) *Error {
	return &Error{
		Code: ErrCodeSynchronousMode, Message: fmt.Sprintf("the instance for provider %q cannot be created in synchronous mode", iface),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"interface": iface},
	}
}

// TypeMismatch creates an Error for a resolved instance that does not match
// the requested Go type.
func TypeMismatch(iface, got, want string) *Error {
	return &Error{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("resolved %q is %s, expected %s", iface, got, want),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"interface": iface, "got": got, "want": want},
	}
}

// --- Lifecycle error constructors ---

// ContainerClosed creates an Error for an operation on a closed container.
func ContainerClosed() *Error {
	return &Error{
		Code: ErrCodeContainerClosed, Message: "the container is closed",
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// ScopesOpen creates an Error for closing a container while child scopes are
// still open.
func ScopesOpen(count int) *Error {
	return &Error{
		Code: ErrCodeScopesOpen, Message: fmt.Sprintf("%d request scope(s) still open", count),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"open": count},
	}
}

// CleanupFailed creates an Error wrapping one or more resource release
// failures collected while closing a scope.
func CleanupFailed(scope string, cause error) *Error {
	return &Error{
		Code: ErrCodeCleanupFailed, Message: fmt.Sprintf("closing the %q scope released with errors", scope),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"scope": scope},
		Cause:      cause,
	}
}

// Validation creates a VALIDATION_ERROR for invalid input or
// configuration values.
func Validation(message string) *Error {
	return &Error{
		Code: ErrCodeValidation, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates an Error for an unexpected internal error.
func Internal(cause error) *Error {
	return &Error{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}
