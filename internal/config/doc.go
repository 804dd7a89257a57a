// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files, flags). It provides
// type-safe access to application settings needed by different components
// while keeping configuration details separate from serving logic.
package config
