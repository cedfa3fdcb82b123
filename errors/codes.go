package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors (detected at registration or validation time, fatal)
const (
	// ErrCodeDuplicateProvider indicates a second registration for an
	// interface without explicit override intent.
	ErrCodeDuplicateProvider ErrorCode = "DUPLICATE_PROVIDER"
	// ErrCodeInvalidScope indicates an invalid scope nesting, such as a
	// singleton provider depending on a request-scoped one.
	ErrCodeInvalidScope ErrorCode = "INVALID_SCOPE"
	// ErrCodeCircularDependency indicates a cycle in the provider graph.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeInvalidProvider indicates a malformed provider registration.
	ErrCodeInvalidProvider ErrorCode = "INVALID_PROVIDER"
)

// Resolution errors
const (
	// ErrCodeProviderNotFound indicates no provider is registered for the
	// requested interface.
	ErrCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	// ErrCodeScopeNotStarted indicates a resolution that requires a scope
	// which has not been started.
	ErrCodeScopeNotStarted ErrorCode = "SCOPE_NOT_STARTED"
	// ErrCodeSynchronousMode indicates a synchronous resolution of a
	// context-aware provider.
	ErrCodeSynchronousMode ErrorCode = "SYNCHRONOUS_MODE"
	// ErrCodeTypeMismatch indicates a resolved instance does not match the
	// requested Go type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Lifecycle errors
const (
	// ErrCodeContainerClosed indicates an operation on a closed container.
	ErrCodeContainerClosed ErrorCode = "CONTAINER_CLOSED"
	// ErrCodeScopesOpen indicates the container was closed while child
	// scopes were still open.
	ErrCodeScopesOpen ErrorCode = "SCOPES_OPEN"
	// ErrCodeCleanupFailed indicates one or more resource releases failed
	// while closing a scope.
	ErrCodeCleanupFailed ErrorCode = "CLEANUP_FAILED"
)

// Internal errors
const (
	// ErrCodeValidation indicates invalid input or configuration values.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// configurationCodes are fatal at setup and never recovered from.
var configurationCodes = map[ErrorCode]bool{
	ErrCodeDuplicateProvider:  true,
	ErrCodeInvalidScope:       true,
	ErrCodeCircularDependency: true,
	ErrCodeInvalidProvider:    true,
}

// IsConfigurationCode returns true if the error code indicates a
// configuration error detected at setup time.
func IsConfigurationCode(code ErrorCode) bool {
	return configurationCodes[code]
}
