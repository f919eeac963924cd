// Package errors provides centralized error definitions and error handling utilities
// for roster. It defines the errors a remote user source can produce, semantic
// error types, constructors with context wrapping, and classification helpers.
//
// # Error Types
//
// Source errors describe why a batch of users could not be produced:
//   - NetworkError: connectivity failures, timeouts, and non-2xx HTTP responses
//   - ParseError: a response body that cannot be decoded into users
//
// Semantic errors describe invalid input:
//   - ValidationError: an argument or value outside its allowed range
//
// # Usage
//
//	err := errors.NewNetworkError("request failed", cause).WithURL(u)
//
//	if errors.IsNetwork(err) { ... }
//
//	var parseErr *errors.ParseError
//	if errors.As(err, &parseErr) { ... }
//
// The list controller does not branch on these types: both network and parse
// failures surface to the user the same way. The controller logs Severity and
// IsRetryable; the fetch command picks its message with IsNetwork, IsParse and
// the ErrTimeout sentinel.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrNetwork indicates the remote source could not be reached or answered
	// with a non-success status.
	ErrNetwork = New("network error")
	// ErrParse indicates the remote source answered with a body that is not a
	// user or a list of users.
	ErrParse = New("malformed response")
	// ErrInvalidCount indicates a batch size below one was requested.
	ErrInvalidCount = New("batch count must be at least 1")
	// ErrTimeout indicates that a request to the source timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that a request to the source was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// RosterError is the base interface for all roster errors.
type RosterError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient. Roster never
	// retries on its own; this only informs logs and messages.
	IsRetryable() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// -----------------------------------------------------------------------------
// Source Errors
// -----------------------------------------------------------------------------

// NetworkError represents a failure to obtain a response from the remote source.
//
// Example:
//
//	err := errors.NewNetworkError("request failed", ctx.Err()).WithURL(u)
//	fmt.Println(err) // "network error [url=https://...]: request failed: context deadline exceeded"
type NetworkError struct {
	baseError
	URL        string
	StatusCode int
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityError,
			retryable: true,
		},
	}
}

// WithURL records the requested URL.
func (e *NetworkError) WithURL(url string) *NetworkError {
	e.URL = url
	return e
}

// WithStatusCode records the HTTP status the source answered with.
func (e *NetworkError) WithStatusCode(code int) *NetworkError {
	e.StatusCode = code
	// Client errors will not go away by asking again.
	if code >= 400 && code < 500 {
		e.retryable = false
	}
	return e
}

// WithSeverity sets the error severity.
func (e *NetworkError) WithSeverity(s Severity) *NetworkError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *NetworkError) Error() string {
	var parts []string
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("url=%s", e.URL))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	return formatWithContext("network error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *NetworkError) Is(target error) bool {
	if _, ok := target.(*NetworkError); ok {
		return true
	}
	if target == ErrNetwork {
		return true
	}
	return e.baseError.Is(target)
}

// ParseError represents a response body that could not be decoded into users.
//
// Example:
//
//	err := errors.NewParseError("decode users", jsonErr).WithBody(body)
type ParseError struct {
	baseError
	URL  string
	Body string // leading bytes of the offending body
}

// maxBodySnippet bounds how much of a bad body is kept on a ParseError.
const maxBodySnippet = 120

// NewParseError creates a new ParseError.
func NewParseError(message string, cause error) *ParseError {
	return &ParseError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityError,
			retryable: false,
		},
	}
}

// WithURL records the requested URL.
func (e *ParseError) WithURL(url string) *ParseError {
	e.URL = url
	return e
}

// WithBody keeps a bounded snippet of the body for diagnostics.
func (e *ParseError) WithBody(body []byte) *ParseError {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet] + "..."
	}
	e.Body = snippet
	return e
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	var parts []string
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("url=%s", e.URL))
	}
	return formatWithContext("parse error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *ParseError) Is(target error) bool {
	if _, ok := target.(*ParseError); ok {
		return true
	}
	if target == ErrParse {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:   message,
			severity:  SeverityWarning,
			retryable: false,
		},
	}
}

// WithField sets the field that failed validation.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue sets the invalid value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause sets the underlying cause.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return formatWithContext("validation error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

func formatWithContext(prefix string, parts []string, message string, cause error) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return As(err, &netErr)
}

// IsParse reports whether err is or wraps a ParseError.
func IsParse(err error) bool {
	var parseErr *ParseError
	return As(err, &parseErr)
}

// IsRetryable returns true if the error is transient.
// This checks for:
//   - Errors implementing RosterError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rosterErr RosterError
	if As(err, &rosterErr) {
		return rosterErr.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RosterError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var rosterErr RosterError
	if As(err, &rosterErr) {
		return rosterErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this returns nil for a nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
