// Package config loads, normalizes, and validates Cadence configuration from
// TOML with sensible defaults for every section.
package config
