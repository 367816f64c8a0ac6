// Package config defines configuration for the getter CLI.
//
// Configuration is resolved in layers: built-in defaults, then an
// optional YAML file, then GETTER_* environment variables, then
// command-line flags merged on top. Validate checks the final result.
package config
