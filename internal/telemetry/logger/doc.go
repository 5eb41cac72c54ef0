// Package logger provides structured logging for kvdis.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, JSON/text handlers, runtime level changes
//   - context.go: context propagation of the logger, connection and request IDs
//   - redact.go: redaction of attributes whose key names a secret
//
// Stored keys and values are never logged; connection handlers log verbs,
// outcomes and error codes only.
package logger
