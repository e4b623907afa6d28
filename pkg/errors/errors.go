// Package errors provides structured error handling for sectionlist.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindIdentity indicates a key extractor failure or an unusable key.
	KindIdentity
	// KindSnapshot indicates a snapshot could not be constructed.
	KindSnapshot
	// KindConsistency indicates the widget and the change set desynchronized.
	KindConsistency
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration or fixture file.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindSnapshot:
		return "snapshot"
	case KindConsistency:
		return "consistency"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// sentinel is a comparable error value usable with errors.Is.
type sentinel string

func (s sentinel) Error() string { return string(s) }

const (
	// ErrNoExtractor is returned when a key extractor is nil.
	ErrNoExtractor = sentinel("no key extractor")
	// ErrUnhashableKey is returned when an extracted key cannot be compared.
	ErrUnhashableKey = sentinel("key is not comparable")
	// ErrUnstableKey is returned when an extracted key is not equal to itself.
	ErrUnstableKey = sentinel("key is not equal to itself")
	// ErrOutOfBounds is returned by widgets when a position is outside their current content.
	ErrOutOfBounds = sentinel("position out of bounds")
	// ErrCountMismatch is returned when a widget's row count disagrees with the data source.
	ErrCountMismatch = sentinel("row count mismatch")
	// ErrNotInUse is returned when releasing a renderer that is not in use.
	ErrNotInUse = sentinel("renderer not in use")
	// ErrClosed is returned by a driver after Close.
	ErrClosed = sentinel("driver closed")
)

// ListError represents a structured error raised by sectionlist.
type ListError struct {
	// Op is the operation that failed (e.g., "driver.Update").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Section is the section index involved, or -1 when not applicable.
	Section int
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

// New returns a ListError without section information.
func New(op string, kind ErrorKind, err error) *ListError {
	return &ListError{Op: op, Kind: kind, Err: err, Section: -1}
}

func (e *ListError) Error() string {
	if e.Section >= 0 {
		return fmt.Sprintf("%s [%s] section=%d: %v", e.Op, e.Kind, e.Section, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "driver.Row").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by sectionlist.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ListError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
