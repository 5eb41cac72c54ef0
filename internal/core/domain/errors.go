// Package domain defines the core domain models for kvdis.
package domain

import (
	"errors"
	"fmt"
)

// Class groups error codes into the three closed failure families.
type Class string

const (
	// ClassParse covers failures turning a text line into a command.
	ClassParse Class = "parse"
	// ClassDictionary covers failures executing a command against the store.
	ClassDictionary Class = "dictionary"
	// ClassSerialization covers snapshot encoding, decoding and file I/O.
	ClassSerialization Class = "serialization"
)

// Error is a domain error with a structured error code.
//
// Code identifies the variant and is what errors.Is compares. Message is the
// human-readable text sent to clients. Details and Cause are for logs only.
type Error struct {
	Class   Class
	Code    string // e.g. "KV-DICT-4040"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Display returns the client-facing text bound to the variant.
//
// Wrapped domain errors are appended so that an IOError reads as
// "persistence failure: could not write snapshot".
func (e *Error) Display() string {
	var inner *Error
	if e.Cause != nil && errors.As(e.Cause, &inner) {
		return e.Message + ": " + inner.Display()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(class Class, code, message string) *Error {
	return &Error{
		Class:   class,
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(format string, args ...any) *Error {
	return &Error{
		Class:   e.Class,
		Code:    e.Code,
		Message: e.Message,
		Details: fmt.Sprintf(format, args...),
		Cause:   e.Cause,
	}
}

// Wrap returns a copy of the error wrapping the given cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{
		Class:   e.Class,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// ClassOf reports the family of err, or "" when err is not a domain error.
func ClassOf(err error) Class {
	var de *Error
	if errors.As(err, &de) {
		return de.Class
	}
	return ""
}

// CodeOf extracts the error code from err if it is a domain error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Parse errors.
var (
	// ErrNotACommand indicates the verb is not part of the command set.
	ErrNotACommand = newError(ClassParse, "KV-PARS-4001", "not a command")

	// ErrInvalidParameters indicates a wrong argument count or an unparsable duration.
	ErrInvalidParameters = newError(ClassParse, "KV-PARS-4002", "invalid parameters")

	// ErrIsEmpty indicates a line without any tokens.
	ErrIsEmpty = newError(ClassParse, "KV-PARS-4003", "empty command")
)

// Dictionary errors.
var (
	// ErrDoesNotExist indicates the key is not in the store.
	ErrDoesNotExist = newError(ClassDictionary, "KV-DICT-4040", "key does not exist")

	// ErrIsExpired indicates the key is present but past its expiration.
	ErrIsExpired = newError(ClassDictionary, "KV-DICT-4041", "key is expired")

	// ErrInvalidOperationType indicates INCR/DECR on a value that is not an integer.
	ErrInvalidOperationType = newError(ClassDictionary, "KV-DICT-4001", "value is not an integer")

	// ErrIO wraps a serialization error raised by SAVE or LOAD.
	ErrIO = newError(ClassDictionary, "KV-DICT-5000", "persistence failure")
)

// Serialization errors.
var (
	// ErrKeyRead indicates a snapshot line without a key field.
	ErrKeyRead = newError(ClassSerialization, "KV-SNAP-4001", "could not read key")

	// ErrValueRead indicates a snapshot line without a value field.
	ErrValueRead = newError(ClassSerialization, "KV-SNAP-4002", "could not read value")

	// ErrTimestampRead indicates an expiration field that is not a timestamp.
	ErrTimestampRead = newError(ClassSerialization, "KV-SNAP-4003", "could not read timestamp")

	// ErrIORead indicates the snapshot could not be read.
	ErrIORead = newError(ClassSerialization, "KV-SNAP-5001", "could not read snapshot")

	// ErrIOWrite indicates the snapshot could not be written.
	ErrIOWrite = newError(ClassSerialization, "KV-SNAP-5002", "could not write snapshot")
)

// IOError wraps a serialization failure into the dictionary family.
// Non-domain causes are first classified as cause.
func IOError(cause error, fallback *Error) *Error {
	var de *Error
	if errors.As(cause, &de) && de.Class == ClassSerialization {
		return ErrIO.Wrap(de)
	}
	return ErrIO.Wrap(fallback.Wrap(cause))
}
