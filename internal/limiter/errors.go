package limiter

import (
	"errors"
	"fmt"
)

// Error represents a failure that prevented an admission decision.
//
// Store and lock failures are fatal for the current call: the limiter
// propagates them instead of silently defaulting to admitted or denied.
// Error includes structured fields for diagnostics.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the file the failure relates to (event log or lock file).
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes limiter failures.
type ErrorCode string

const (
	// ErrCodeStoreUnavailable indicates the event log could not be opened
	// or created in write mode.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeStoreWrite indicates an insert into the event log failed.
	ErrCodeStoreWrite ErrorCode = "STORE_WRITE"

	// ErrCodeStoreCorruption indicates stored entries could not be read back.
	ErrCodeStoreCorruption ErrorCode = "STORE_CORRUPTION"

	// ErrCodeLockUnavailable indicates the advisory lock could not be acquired.
	ErrCodeLockUnavailable ErrorCode = "LOCK_UNAVAILABLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStoreUnavailable returns true if the error is a store-open failure.
// Uses errors.As to handle wrapped errors.
func IsStoreUnavailable(err error) bool {
	return hasCode(err, ErrCodeStoreUnavailable)
}

// IsStoreWrite returns true if the error is an event-insert failure.
func IsStoreWrite(err error) bool {
	return hasCode(err, ErrCodeStoreWrite)
}

// IsStoreCorruption returns true if the error is a corrupt-history failure.
func IsStoreCorruption(err error) bool {
	return hasCode(err, ErrCodeStoreCorruption)
}

// IsLockUnavailable returns true if the error is a lock-acquisition failure.
func IsLockUnavailable(err error) bool {
	return hasCode(err, ErrCodeLockUnavailable)
}

func hasCode(err error, code ErrorCode) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// NewStoreUnavailable creates an Error for an event log that cannot be opened.
func NewStoreUnavailable(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeStoreUnavailable,
		Message: "event log cannot be opened",
		Path:    path,
		Err:     err,
	}
}

// NewStoreWrite creates an Error for a failed event insert.
func NewStoreWrite(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeStoreWrite,
		Message: "event log write failed",
		Path:    path,
		Err:     err,
	}
}

// NewStoreCorruption creates an Error for unreadable stored history.
func NewStoreCorruption(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeStoreCorruption,
		Message: "event log history unreadable",
		Path:    path,
		Err:     err,
	}
}

// NewLockUnavailable creates an Error for a lock that cannot be acquired.
func NewLockUnavailable(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeLockUnavailable,
		Message: "advisory lock cannot be acquired",
		Path:    path,
		Err:     err,
	}
}
