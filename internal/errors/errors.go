package errors

import (
	"errors"
	"fmt"
)

var (
	// Container structure errors
	ErrInvalidHeader     = errors.New("invalid BBT header")
	ErrInvalidPlatform   = errors.New("invalid platform")
	ErrUnknownChunkType  = errors.New("unknown chunk type")
	ErrCorruptContainer  = errors.New("corrupt BBT container")
	ErrCartridgeConflict = errors.New("cartridge cannot be combined with a program, disk images or data")

	// Payload validation errors
	ErrInvalidProgram   = errors.New("startup program is invalid")
	ErrInvalidCartridge = errors.New("cartridge is invalid")
	ErrInvalidDiskImage = errors.New("invalid disk image")

	// I/O errors
	ErrRead  = errors.New("read error")
	ErrWrite = errors.New("write error")

	// Caller-side limits
	ErrCapacity        = errors.New("capacity exceeded")
	ErrInvalidArgument = errors.New("invalid argument")
)

// BBTError represents an error with additional container context
type BBTError struct {
	Err       error  // The underlying sentinel error
	Operation string // The operation that failed (build, parse, extract, ...)
	Object    string // The path or manifest slot involved
	Detail    string // Additional details about the error
}

// Error implements the error interface
func (e *BBTError) Error() string {
	if e.Object != "" && e.Detail != "" {
		return fmt.Sprintf("%s: %s [%s]: %v", e.Operation, e.Object, e.Detail, e.Err)
	} else if e.Object != "" {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Object, e.Err)
	} else if e.Detail != "" {
		return fmt.Sprintf("%s: %v [%s]", e.Operation, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *BBTError) Unwrap() error {
	return e.Err
}

// New creates a BBTError with the given details
func New(err error, operation string, object string, detail string) error {
	return &BBTError{
		Err:       err,
		Operation: operation,
		Object:    object,
		Detail:    detail,
	}
}

// Newf creates a BBTError with a formatted detail string
func Newf(err error, operation string, object string, format string, args ...interface{}) error {
	return New(err, operation, object, fmt.Sprintf(format, args...))
}

// IsIOError returns true if the error is caused by a failed read or write
func IsIOError(err error) bool {
	return errors.Is(err, ErrRead) || errors.Is(err, ErrWrite)
}

// IsInvalidData returns true if the error indicates a malformed container
func IsInvalidData(err error) bool {
	return errors.Is(err, ErrInvalidHeader) || errors.Is(err, ErrInvalidPlatform) ||
		errors.Is(err, ErrUnknownChunkType) || errors.Is(err, ErrCorruptContainer)
}

// IsValidationError returns true if a manifest was rejected before anything was written
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidProgram) || errors.Is(err, ErrInvalidCartridge) ||
		errors.Is(err, ErrInvalidDiskImage) || errors.Is(err, ErrCapacity) ||
		errors.Is(err, ErrCartridgeConflict) || errors.Is(err, ErrInvalidArgument)
}
