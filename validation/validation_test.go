package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/dikit/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "app")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v.Required("name", "  ")
	if !v.HasErrors() {
		t.Error("expected an error for blank input")
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New().
		Required("name", "").
		OneOf("level", "loud", []string{"debug", "info"}).
		Min("timeout", 0, 1).
		Max("workers", 128, 64).
		Custom(false, "endpoint", "must be reachable")

	if len(v.Errors()) != 5 {
		t.Fatalf("expected 5 errors, got %d: %+v", len(v.Errors()), v.Errors())
	}

	err := v.Err()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
	if !strings.Contains(err.Error(), "endpoint: must be reachable") {
		t.Errorf("expected the custom message, got %q", err.Error())
	}
}

func TestValidatorErrNilWhenClean(t *testing.T) {
	v := New().
		Required("name", "app").
		OneOf("level", "", []string{"debug", "info"}).
		Min("workers", 4, 1)
	if err := v.Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateStruct(t *testing.T) {
	type cfg struct {
		Name     string `mapstructure:"name" validate:"required"`
		Level    string `mapstructure:"level" validate:"omitempty,oneof=debug info warn"`
		Endpoint string `mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	}

	if err := Validate(cfg{Name: "app", Level: "info", Endpoint: "localhost:4318"}); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}

	err := Validate(cfg{Level: "loud"})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "name: is required") {
		t.Errorf("expected required failure for name, got %q", msg)
	}
	if !strings.Contains(msg, "level: must be one of") {
		t.Errorf("expected oneof failure for level, got %q", msg)
	}
}

func TestValidateUUID(t *testing.T) {
	id := uuid.New()
	parsed, err := ValidateUUID("request_id", id.String())
	if err != nil {
		t.Fatalf("expected valid UUID, got %v", err)
	}
	if parsed != id {
		t.Error("expected the parsed UUID to round-trip")
	}

	if _, err := ValidateUUID("request_id", ""); err == nil {
		t.Error("expected an error for an empty value")
	}
	if _, err := ValidateUUID("request_id", "not-a-uuid"); err == nil {
		t.Error("expected an error for a malformed value")
	}
}
