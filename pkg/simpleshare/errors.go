package simpleshare

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrLinkNotFound indicates a link was not found
	ErrLinkNotFound = errors.New("link not found")

	// ErrFileNotFound indicates a file was not found
	ErrFileNotFound = errors.New("file not found")

	// ErrTextNotFound indicates a text paste was not found
	ErrTextNotFound = errors.New("text not found")

	// ErrLinkExpired indicates a link exists but is past its expiry
	ErrLinkExpired = errors.New("link has expired")

	// ErrFileExpired indicates a file exists but is past its expiry
	ErrFileExpired = errors.New("file has expired")

	// ErrTextExpired indicates a text paste exists but is past its expiry
	ErrTextExpired = errors.New("text has expired")

	// ErrCodeTaken indicates a custom short code is already in use
	ErrCodeTaken = errors.New("short code already exists")

	// ErrInvalidAddress indicates a target address is not a well-formed URL
	ErrInvalidAddress = errors.New("invalid address")

	// ErrEmptyContent indicates missing or empty payload on create
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrTooLarge indicates a payload exceeds the configured size limit
	ErrTooLarge = errors.New("content too large")

	// ErrPasswordRequired indicates a password-protected record was read
	// without a password
	ErrPasswordRequired = errors.New("password required")

	// ErrPasswordIncorrect indicates a supplied password did not match
	ErrPasswordIncorrect = errors.New("incorrect password")

	// ErrKeyNotFound is returned by KVStore implementations for absent keys
	ErrKeyNotFound = errors.New("key not found")

	// ErrObjectNotFound is returned by BlobStore implementations for absent
	// objects. The service maps it to the owning kind's not-found error so
	// a record whose payload is gone reads as not-found.
	ErrObjectNotFound = errors.New("object not found")
)

// StoreError represents a metadata store failure. Callers see it as a
// generic storage failure; the wrapped error carries the infrastructure
// detail for server-side logging.
type StoreError struct {
	Key string
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// StorageError represents a blob store failure.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageFailure reports whether err is an infrastructure failure of the
// metadata or blob store, as opposed to one of the domain error kinds.
func IsStorageFailure(err error) bool {
	var se *StoreError
	var be *StorageError
	return errors.As(err, &se) || errors.As(err, &be)
}
