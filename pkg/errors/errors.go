// Package errors provides the error types shared by the CyberShield SDK.
//
// Every failure inside the client and the module controllers is reported as an
// *Error carrying a Kind, so callers can decide whether a failure is worth a
// retry without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// Base Error Types
// =============================================================================

// Error is the base error type for all SDK errors.
type Error struct {
	// Kind indicates the category of error
	Kind Kind

	// Op is the operation being performed (e.g., "client.SubmitScan")
	Op string

	// Message is a human-readable description
	Message string

	// Err is the underlying error
	Err error
}

// Kind represents the kind/category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindRateLimit
	KindTimeout
	KindNetwork
	KindServer
	KindDecode
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimit:
		return "rate_limit"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			if e.Message != "" {
				return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
			}
			return fmt.Sprintf("%s: %v", e.Op, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target.
// Two *Error values match when their kinds match; a sentinel with a message
// additionally requires the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" && t.Message != e.Message {
		return false
	}
	return e.Kind == t.Kind
}

// =============================================================================
// Constructors
// =============================================================================

// E constructs an Error from the given arguments.
// Arguments can be: Kind, string (Op first, then Message), error.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case string:
			if e.Op == "" {
				e.Op = a
			} else {
				e.Message = a
			}
		case error:
			e.Err = a
		}
	}
	if e.Kind == KindUnknown && e.Err != nil {
		e.Kind = GetKind(e.Err)
	}
	return e
}

// New creates a new simple error.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps an error with the operation name. The kind of a wrapped *Error
// is preserved.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: GetKind(err), Op: op, Err: err}
}

// =============================================================================
// Error Checkers
// =============================================================================

// GetKind returns the Kind of the error, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindUnknown && e.Err != nil {
			return GetKind(e.Err)
		}
		return e.Kind
	}
	return KindUnknown
}

// KindFromStatus maps an HTTP status code to an error kind.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// IsNetworkError checks if the error is a network error.
func IsNetworkError(err error) bool {
	return GetKind(err) == KindNetwork
}

// IsTimeoutError checks if the error is a timeout error.
func IsTimeoutError(err error) bool {
	return GetKind(err) == KindTimeout
}

// IsRateLimitError checks if the error is a rate limit error.
func IsRateLimitError(err error) bool {
	return GetKind(err) == KindRateLimit
}

// IsDecodeError checks if the response body could not be decoded.
func IsDecodeError(err error) bool {
	return GetKind(err) == KindDecode
}

// IsRetryable checks if the error is retryable.
// Network, timeout, rate limit and server errors are retryable; invalid input
// and decode failures are not.
func IsRetryable(err error) bool {
	switch GetKind(err) {
	case KindNetwork, KindTimeout, KindRateLimit, KindServer:
		return true
	default:
		return false
	}
}

// =============================================================================
// Common Errors
// =============================================================================

var (
	// ErrScanInProgress is returned when a scan is requested while another
	// scan on the same module is still outstanding.
	ErrScanInProgress = &Error{Kind: KindConflict, Message: "scan already in progress"}

	// ErrEmptyInput is returned when the scan subject is blank.
	ErrEmptyInput = &Error{Kind: KindInvalidInput, Message: "nothing to scan"}

	// ErrNoResult is returned by report actions when no scan result exists yet.
	ErrNoResult = &Error{Kind: KindNotFound, Message: "no scan result"}

	// ErrMissingBaseURL is returned when the client has no service URL.
	ErrMissingBaseURL = &Error{Kind: KindInvalidInput, Message: "service base URL is required"}

	// ErrUnknownModule is returned for a module name that is not recognised.
	ErrUnknownModule = &Error{Kind: KindInvalidInput, Message: "unknown module"}
)
