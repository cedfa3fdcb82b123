package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestError_New_Success(t *testing.T) {
	err := New(ErrCodeProviderNotFound, "no provider", http.StatusInternalServerError)
	if err.Code != ErrCodeProviderNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeProviderNotFound, err.Code)
	}
	if err.Message != "no provider" {
		t.Errorf("expected message 'no provider', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, err.HTTPStatus)
	}
}

func TestError_DuplicateProvider(t *testing.T) {
	err := DuplicateProvider("db")
	if err.Code != ErrCodeDuplicateProvider {
		t.Errorf("expected DUPLICATE_PROVIDER, got %s", err.Code)
	}
	if err.Details["interface"] != "db" {
		t.Errorf("expected interface=db, got %v", err.Details["interface"])
	}
	if !IsConfigurationCode(err.Code) {
		t.Error("DUPLICATE_PROVIDER should be a configuration code")
	}
}

func TestError_ProviderNotFound(t *testing.T) {
	err := ProviderNotFound("cache")
	if err.Code != ErrCodeProviderNotFound {
		t.Errorf("expected PROVIDER_NOT_FOUND, got %s", err.Code)
	}
	if IsConfigurationCode(err.Code) {
		t.Error("PROVIDER_NOT_FOUND should not be a configuration code")
	}
	if !strings.Contains(err.Error(), "cache") {
		t.Errorf("expected interface name in message, got %q", err.Error())
	}
}

func TestError_SynchronousMode(t *testing.T) {
	err := SynchronousMode("db")
	if !strings.Contains(err.Error(), "cannot be created in synchronous mode") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestError_InvalidScope(t *testing.T) {
	err := InvalidScope("service", "singleton", "session", "request")
	if err.Code != ErrCodeInvalidScope {
		t.Errorf("expected INVALID_SCOPE, got %s", err.Code)
	}
	if err.Details["dependency_scope"] != "request" {
		t.Errorf("expected dependency_scope=request, got %v", err.Details["dependency_scope"])
	}
}

func TestError_WithCause_Unwrap(t *testing.T) {
	cause := fmt.Errorf("release failed")
	err := CleanupFailed("request", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
	if !strings.Contains(err.Error(), "release failed") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestError_WithDetail(t *testing.T) {
	err := Internal(nil).WithDetail("op", "resolve")
	if err.Details["op"] != "resolve" {
		t.Errorf("expected op=resolve, got %v", err.Details["op"])
	}
	err.WithDetails(map[string]any{"interface": "db"})
	if err.Details["interface"] != "db" {
		t.Errorf("expected interface=db, got %v", err.Details["interface"])
	}
	if err.Details["op"] != "resolve" {
		t.Error("WithDetails should merge, not replace")
	}
}

func TestHasCode(t *testing.T) {
	inner := ProviderNotFound("db")
	wrapped := fmt.Errorf("resolving service: %w", inner)
	if !HasCode(wrapped, ErrCodeProviderNotFound) {
		t.Error("expected HasCode to find PROVIDER_NOT_FOUND through wrapping")
	}
	if HasCode(wrapped, ErrCodeInvalidScope) {
		t.Error("did not expect INVALID_SCOPE")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error should carry no code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(ScopeNotStarted("request")); got != ErrCodeScopeNotStarted {
		t.Errorf("expected SCOPE_NOT_STARTED, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR for plain error, got %s", got)
	}
}

func TestToResponse(t *testing.T) {
	err := DuplicateProvider("db")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeDuplicateProvider {
		t.Errorf("expected DUPLICATE_PROVIDER, got %s", resp.Error.Code)
	}
	if resp.Error.Details["interface"] != "db" {
		t.Errorf("expected interface detail, got %v", resp.Error.Details)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(ContainerClosed()); got != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", got)
	}
	if got := StatusOf(fmt.Errorf("plain")); got != http.StatusInternalServerError {
		t.Errorf("expected 500 fallback, got %d", got)
	}
}

func TestAsError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ScopesOpen(2))
	de, ok := AsError(err)
	if !ok {
		t.Fatal("expected AsError to succeed")
	}
	if de.Code != ErrCodeScopesOpen {
		t.Errorf("expected SCOPES_OPEN, got %s", de.Code)
	}
	if _, ok := AsError(fmt.Errorf("plain")); ok {
		t.Error("expected AsError to fail for a plain error")
	}
	if IsError(fmt.Errorf("plain")) {
		t.Error("expected IsError false for a plain error")
	}
}
