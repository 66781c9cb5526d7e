// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml and AUTHORS_-prefixed environment
// variables.
package config
