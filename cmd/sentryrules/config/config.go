// Package config defines the on-disk and flag-bound configuration of the
// sentryrules address-set compiler service.
package config

import "fmt"

// Config is the top-level configuration for the sentryrules binary.
type Config struct {
	// API controls the HTTP compilation/lookup service.
	API APIConfig `mapstructure:"api"`
	// Resolver controls how "$name" variable references are resolved when
	// the name is not found in --vars-file (CLI) or in a request's inline
	// "vars" (HTTP API).
	Resolver ResolverConfig `mapstructure:"resolver"`
	// Logging holds the shared logging configuration bound by pkg/conf.
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig configures the HTTP server exposed by "sentryrules serve".
type APIConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

// ResolverConfig configures the remote variable-table lookup used when
// compiling expressions that reference "$name" groups.
type ResolverConfig struct {
	// BaseURL of the rule-distribution service. Empty disables remote
	// resolution; only a --vars-file or inline expression is usable.
	BaseURL string `mapstructure:"base_url"`
	// TimeoutSeconds bounds each group lookup.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig mirrors pkg/conf's flag-bound logging keys for unmarshaling
// from the same config file/env sources.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Destination string `mapstructure:"destination"`
}

// Validate checks the configuration for obviously invalid values before the
// server or CLI command runs.
func (c *Config) Validate() error {
	if c.Resolver.TimeoutSeconds < 0 {
		return fmt.Errorf("resolver.timeout_seconds must not be negative")
	}
	return nil
}
