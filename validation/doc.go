// Package validation provides input validation utilities for dikit
// configuration and adapters.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// recommended for configuration structs.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Name  string `mapstructure:"name" validate:"required"`
//	    Level string `mapstructure:"level" validate:"oneof=debug info warn"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("name", cfg.Name)
//	v.Min("timeout_seconds", cfg.TimeoutSeconds, 1)
//	err := v.Err()
package validation
