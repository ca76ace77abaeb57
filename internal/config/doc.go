// Package config loads editor settings from a TOML file with
// KILN_-prefixed environment variable overrides, and watches the file
// for live reload. Missing files and unknown keys are tolerated: the
// editor always starts with a complete configuration.
package config
