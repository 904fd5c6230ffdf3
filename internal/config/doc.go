// Package config loads, validates, and normalizes the TOML configuration
// for the alignment pipeline.
//
// Configuration is an explicit value passed into each component's
// constructor; no package reads ambient global state. Load applies defaults,
// expands ~ in path fields, and validates before returning.
package config
