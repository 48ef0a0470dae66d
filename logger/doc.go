// Package logger provides structured logging for bridgekit applications
// using zerolog.
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
//	log := logger.Get("my-component")
//	log.Info("operation completed", logger.Fields("key", "value"))
package logger
