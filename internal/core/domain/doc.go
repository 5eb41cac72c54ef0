// Package domain defines the core domain models for kvdis.
//
// Domain models are pure values without any IO dependencies:
//
//   - Entry: a stored value and its optional absolute expiration
//   - Error: the closed failure vocabulary shared by every layer
//
// Errors come in three families (see Class): parse errors raised while
// reading a command line, dictionary errors raised while executing a
// command, and serialization errors raised by snapshot persistence.
// Serialization errors reach clients wrapped in ErrIO.
package domain
