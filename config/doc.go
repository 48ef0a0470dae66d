// Package config provides configuration loading and validation for bridgekit
// applications.
//
// It uses Viper to load configuration from files and environment variables,
// supporting multiple formats (YAML, JSON, TOML) and environment-specific
// overrides.
//
// # Usage
//
//	var cfg MyConfig
//	err := config.LoadConfig("my-service", &cfg)
//
// Environment variables override file values without any prefix: each
// variable is lower-cased and bound under several nested key forms built
// from its underscores (e.g., BACKPRESSURE_HIGH_WATERMARK also sets
// backpressure.high_watermark).
package config
