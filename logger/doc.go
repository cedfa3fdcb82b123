// Package logger provides structured logging for dikit using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("container")
//	log.Info("scope started", logger.Fields("scope", "request"))
package logger
