package analysis

import "errors"

// ErrorCode is a stable, machine-readable failure code reported to clients.
type ErrorCode string

const (
	CodeOK              ErrorCode = "OK"
	CodeNoGraph         ErrorCode = "NO_GRAPH"
	CodeEmptyQuery      ErrorCode = "EMPTY_QUERY"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeAccessDenied    ErrorCode = "ACCESS_DENIED"
	CodeRangeTooLarge   ErrorCode = "RANGE_TOO_LARGE"
	CodeInputTooLarge   ErrorCode = "INPUT_TOO_LARGE"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInternal        ErrorCode = "INTERNAL"
)

// Error carries a code alongside its message. The package sentinels are
// *Error values; callers add detail by wrapping them with %w.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNoGraph         = &Error{Code: CodeNoGraph, Message: "no graph loaded"}
	ErrEmptyQuery      = &Error{Code: CodeEmptyQuery, Message: "query must not be empty"}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrAccessDenied    = &Error{Code: CodeAccessDenied, Message: "access denied"}
	ErrRangeTooLarge   = &Error{Code: CodeRangeTooLarge, Message: "range too large"}
	ErrInputTooLarge   = &Error{Code: CodeInputTooLarge, Message: "input too large"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
)

// Code maps err to its stable code. Errors outside the taxonomy are INTERNAL.
func Code(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
