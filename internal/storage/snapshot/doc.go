// Package snapshot provides snapshot persistence for kvdis.
//
// A snapshot is the whole store rendered as text, one entry per line:
//
//	key,value
//	key,value,2026-10-17T12:00:00Z
//
// The optional third field is the absolute expiration instant (RFC 3339,
// UTC, second precision). Expired entries are written like any other and
// load back as expired. Delimiters are not escaped, so keys or values
// containing a comma or a newline do not round-trip.
//
// Layers:
//
//  1. Encode/Decode convert entries to and from lines
//  2. Persister renders or restores the store under its lock
//  3. Manager seals the text (optional) and computes the checksum
//  4. Sink stores the blob: FileSink (atomic rename) or BadgerSink
//
// Sealed snapshots are "KVDSEAL1" | salt | nonce | ChaCha20-Poly1305
// ciphertext, keyed by Argon2id over the configured passphrase.
package snapshot
