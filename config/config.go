package config

import (
	"time"

	"github.com/kbukum/dikit/logger"
	"github.com/kbukum/dikit/validation"
)

// Config contains the configuration an application built on the container
// runtime needs. Projects extend it by embedding it in their own config
// structs.
//
// Example:
//
//	type AppConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Database      DatabaseConfig `yaml:"database" mapstructure:"database"`
//	}
type Config struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Container     ContainerConfig     `yaml:"container" mapstructure:"container"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ContainerConfig tunes the dependency container.
type ContainerConfig struct {
	// Strict makes startup validate the full provider graph before any
	// eager resolution.
	Strict bool `yaml:"strict" mapstructure:"strict"`
	// Testing records every real injection in the container's journal.
	Testing bool `yaml:"testing" mapstructure:"testing"`
	// EventsOnlyRequests restricts eager request-scope start to providers
	// tagged as events.
	EventsOnlyRequests bool `yaml:"events_only_requests" mapstructure:"events_only_requests"`
	// GracefulTimeout bounds context-aware cleanup during shutdown.
	GracefulTimeout time.Duration `yaml:"graceful_timeout" mapstructure:"graceful_timeout"`
}

// ObservabilityConfig configures OTLP trace and metric export.
type ObservabilityConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// GetConfig returns the base Config. When embedded in a larger struct this
// method is promoted, so the embedding struct automatically satisfies the
// loader's Settings interface.
func (c *Config) GetConfig() *Config {
	return c
}

// ApplyDefaults applies default values. Override in embedding structs and
// call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Container.GracefulTimeout <= 0 {
		c.Container.GracefulTimeout = 30 * time.Second
	}
	if c.Observability.Enabled {
		if c.Observability.Endpoint == "" {
			c.Observability.Endpoint = "localhost:4318"
		}
		if c.Observability.SampleRate == 0 {
			c.Observability.SampleRate = 1.0
		}
		if c.Observability.Interval <= 0 {
			c.Observability.Interval = 15 * time.Second
		}
	}
}

// Validate validates the configuration. Override in embedding structs and
// call c.Config.Validate() first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	v := validation.New()
	v.Custom(c.Container.GracefulTimeout > 0,
		"container.graceful_timeout", "must be positive")
	if c.Observability.Enabled {
		v.Required("observability.endpoint", c.Observability.Endpoint)
		v.Custom(c.Observability.Interval > 0,
			"observability.interval", "must be positive")
	}
	return v.Err()
}
