// Package fserrors provides the error taxonomy shared by the disk, inode,
// directory and session layers.
//
// This is a leaf package with no internal dependencies so every layer can
// import it without creating cycles.
//
// Import graph: fserrors <- disk, inode, directory <- vfs
package fserrors

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound ErrorCode = iota + 1

	// ErrAlreadyExists indicates a name is already bound in a directory.
	ErrAlreadyExists

	// ErrNotDirectory indicates the operation requires a directory.
	ErrNotDirectory

	// ErrIsDirectory indicates the operation is not valid on a directory.
	ErrIsDirectory

	// ErrNoSpace indicates the block store has no free block left.
	ErrNoSpace

	// ErrInvalidArgument indicates a bad block index, a double free or a bad name.
	ErrInvalidArgument

	// ErrNotSupported indicates a declared but unimplemented feature (symlinks).
	ErrNotSupported
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrNotDirectory:
		return "NotDirectory"
	case ErrIsDirectory:
		return "IsDirectory"
	case ErrNoSpace:
		return "NoSpace"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrNotSupported:
		return "NotSupported"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// FsError is an error carrying an ErrorCode and the path or name it concerns.
type FsError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error implements the error interface.
func (e *FsError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *FsError with the same code, so that
// errors.Is(err, fserrors.New(fserrors.ErrNotFound, "")) matches any NotFound.
func (e *FsError) Is(target error) bool {
	var t *FsError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an FsError with the given code and message.
func New(code ErrorCode, message string) *FsError {
	return &FsError{Code: code, Message: message}
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(path, resourceType string) *FsError {
	return &FsError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resourceType),
		Path:    path,
	}
}

// NewAlreadyExistsError creates an AlreadyExists error.
func NewAlreadyExistsError(path string) *FsError {
	return &FsError{
		Code:    ErrAlreadyExists,
		Message: "already exists",
		Path:    path,
	}
}

// NewNotDirectoryError creates a NotDirectory error.
func NewNotDirectoryError(path string) *FsError {
	return &FsError{
		Code:    ErrNotDirectory,
		Message: "not a directory",
		Path:    path,
	}
}

// NewIsDirectoryError creates an IsDirectory error.
func NewIsDirectoryError(path string) *FsError {
	return &FsError{
		Code:    ErrIsDirectory,
		Message: "is a directory",
		Path:    path,
	}
}

// NewNoSpaceError creates a NoSpace error.
func NewNoSpaceError(needed, free int) *FsError {
	return &FsError{
		Code:    ErrNoSpace,
		Message: fmt.Sprintf("no space left on disk (need %d blocks, %d free)", needed, free),
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *FsError {
	return &FsError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewNotSupportedError creates a NotSupported error.
func NewNotSupportedError(feature string) *FsError {
	return &FsError{
		Code:    ErrNotSupported,
		Message: fmt.Sprintf("%s not supported", feature),
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// CodeOf returns the ErrorCode carried by err, or 0 if err is not an FsError.
func CodeOf(err error) ErrorCode {
	var fsErr *FsError
	if errors.As(err, &fsErr) {
		return fsErr.Code
	}
	return 0
}

// IsNotFoundError returns true if the error is a NotFound error.
func IsNotFoundError(err error) bool {
	return CodeOf(err) == ErrNotFound
}

// IsAlreadyExistsError returns true if the error is an AlreadyExists error.
func IsAlreadyExistsError(err error) bool {
	return CodeOf(err) == ErrAlreadyExists
}

// IsNotDirectoryError returns true if the error is a NotDirectory error.
func IsNotDirectoryError(err error) bool {
	return CodeOf(err) == ErrNotDirectory
}

// IsIsDirectoryError returns true if the error is an IsDirectory error.
func IsIsDirectoryError(err error) bool {
	return CodeOf(err) == ErrIsDirectory
}

// IsNoSpaceError returns true if the error is a NoSpace error.
func IsNoSpaceError(err error) bool {
	return CodeOf(err) == ErrNoSpace
}

// IsInvalidArgumentError returns true if the error is an InvalidArgument error.
func IsInvalidArgumentError(err error) bool {
	return CodeOf(err) == ErrInvalidArgument
}
