package rsakey

import (
	"errors"
	"fmt"
)

// KeyError represents a key codec error with structured context.
// It supports errors.Is() and errors.As() for improved error handling.
type KeyError struct {
	Op    string // Operation: "parse", "build", "marshal", "unmarshal", "weaken"
	Field string // Key field or blob region (if applicable)
	Err   error  // Underlying error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("rsakey %s [%s]: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("rsakey %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *KeyError) Unwrap() error { return e.Err }

// NewKeyError creates a new KeyError with the given operation and error.
func NewKeyError(op string, err error) *KeyError {
	return &KeyError{Op: op, Err: err}
}

// NewFieldError creates a new KeyError with operation, field, and error.
func NewFieldError(op, field string, err error) *KeyError {
	return &KeyError{Op: op, Field: field, Err: err}
}

// Sentinel errors for key codec operations.
// Use errors.Is() to check for these errors through the error chain.
var (
	// ErrUnsupportedBlobType indicates the blob type byte is neither
	// PUBLICKEYBLOB nor PRIVATEKEYBLOB.
	ErrUnsupportedBlobType = errors.New("unsupported blob type")

	// ErrTruncatedData indicates the input is shorter than its layout requires.
	ErrTruncatedData = errors.New("truncated data")

	// ErrInvalidKeySize indicates a bit length that is not a positive multiple of 16.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidXML indicates malformed XML or an invalid base64 payload.
	ErrInvalidXML = errors.New("invalid XML key")

	// ErrIncompleteKey indicates a private key missing one of its private fields.
	ErrIncompleteKey = errors.New("incomplete key")

	// ErrFieldTooLong indicates a field that does not fit its blob region.
	ErrFieldTooLong = errors.New("field exceeds region length")

	// ErrNotPrivate indicates an operation that requires private key material.
	ErrNotPrivate = errors.New("key is not private")
)
