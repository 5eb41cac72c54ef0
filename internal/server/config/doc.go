// Package config provides server configuration for kvdis.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (addresses, backend, passphrase length, log level)
//   - sanitize.go: Log sanitization (hide the encryption passphrase)
//
// Configuration is loaded via internal/infra/confloader: defaults, then a
// YAML file, then KVDIS_ environment variables, then command-line flags.
package config
