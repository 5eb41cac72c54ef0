package config

import "github.com/yndnr/kvdis-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Security.EncryptionKey = logger.RedactString(sanitized.Security.EncryptionKey)
	return &sanitized
}
