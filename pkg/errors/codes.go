package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// InvalidArgumentError represents a request that can never succeed: bad time
	// window, symbol too short, wrong day-of-paths count. Never retried.
	InvalidArgumentError ErrorCode = "invalid_argument"
	// NotFoundError represents a cache miss at a single tier. Local signal only,
	// it triggers the fallback tier and is never surfaced to callers.
	NotFoundError ErrorCode = "not_found"
	// TransientFetchError represents a rate-limited response from the data feed
	// that is retried with backoff.
	TransientFetchError ErrorCode = "transient_fetch"
	// IoFailureError represents a filesystem, object-store or network failure.
	IoFailureError ErrorCode = "io_failure"
	// IllegalStateError represents a violated internal invariant, likely a bug.
	IllegalStateError ErrorCode = "illegal_state"
	// SearchExhaustedError represents an extension search that ran into the
	// beginning of time. Normal termination with a partial result.
	SearchExhaustedError ErrorCode = "search_exhausted"
)

// StackTracer is an interface that requires a StackTrace method.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// CodedError is an `error` carrying an ErrorCode so that callers can branch on
// the kind of failure without parsing messages. Wrapped causes keep a stack
// trace for logging.
type CodedError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewCoded creates a CodedError with a formatted message.
func NewCoded(code ErrorCode, format string, args ...any) *CodedError {
	return &CodedError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapCoded attaches a code to an underlying error, keeping its message and
// preserving its stack trace.
func WrapCoded(code ErrorCode, err error) *CodedError {
	coded := &CodedError{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
	if _, ok := err.(StackTracer); !ok {
		coded.Err = errors.WithStack(err)
	}
	return coded
}

// Error implement error interface.
func (e *CodedError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *CodedError) Unwrap() error {
	return e.Err
}

// StackTrace returns the stack trace of the underlying error if it carries one.
func (e *CodedError) StackTrace() errors.StackTrace {
	if errWithStack, ok := e.Unwrap().(StackTracer); ok {
		return errWithStack.StackTrace()
	}
	return nil
}

// CodeOf extracts the ErrorCode from an error chain. Errors without a code map
// to IoFailureError as the conservative default.
func CodeOf(err error) ErrorCode {
	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return IoFailureError
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var coded *CodedError
	return stderrors.As(err, &coded) && coded.Code == code
}
