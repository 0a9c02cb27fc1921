package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Revision-control environment errors
	ErrCodeDiffUnavailable     ErrorCode = "DIFF_UNAVAILABLE"
	ErrCodeTreeUnavailable     ErrorCode = "TREE_UNAVAILABLE"
	ErrCodeBlobUnavailable     ErrorCode = "BLOB_UNAVAILABLE"
	ErrCodeMalformedDiffRecord ErrorCode = "MALFORMED_DIFF_RECORD"

	// Caller errors
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// Exit codes for fatal errors. 2 is reserved for rejected pushes.
const (
	ExitEnvironment = 1
	ExitDataErr     = 65
	ExitConfig      = 78
)

// AppError represents an application error with additional context
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this error.
func (e *AppError) ExitCode() int {
	return getExitCodeForError(e.Code)
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new application error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with application context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// ExitCode maps any error to a fatal process exit code.
func ExitCode(err error) int {
	return getExitCodeForError(CodeOf(err))
}

func getExitCodeForError(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput:
		return ExitDataErr
	case ErrCodeConfigInvalid:
		return ExitConfig
	default:
		return ExitEnvironment
	}
}

// Common error constructors for convenience

// DiffUnavailable reports a failed revision diff; stderr is carried verbatim.
func DiffUnavailable(old, new, stderr string) *AppError {
	return Newf(ErrCodeDiffUnavailable, "diff %s..%s failed: %s", old, new, stderr)
}

// TreeUnavailable reports a failed tree listing.
func TreeUnavailable(rev, stderr string) *AppError {
	return Newf(ErrCodeTreeUnavailable, "list tree %s failed: %s", rev, stderr)
}

// BlobUnavailable reports a failed object read.
func BlobUnavailable(objectID, stderr string) *AppError {
	return Newf(ErrCodeBlobUnavailable, "read blob %s failed: %s", objectID, stderr)
}

// MalformedDiffRecord reports a diff line with an unexpected shape.
func MalformedDiffRecord(line string, fields int) *AppError {
	return Newf(ErrCodeMalformedDiffRecord, "unexpected diff record with %d fields: %q", fields, line)
}

// InvalidInput creates an invalid input error
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// ConfigInvalid wraps a configuration error
func ConfigInvalid(err error) *AppError {
	return Wrap(err, ErrCodeConfigInvalid, "invalid configuration")
}

// InternalError creates an internal error
func InternalError(err error) *AppError {
	return Wrap(err, ErrCodeInternalError, "internal error")
}
