package errors

import (
	stderrors "errors"
	"fmt"
)

// NexusError is the structured error type for Nexus.
// It provides rich context for error handling, logging, and user presentation.
type NexusError struct {
	// Code is the unique error code (e.g., "ERR_201_INDEX_SOURCE_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Lifecycle, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *NexusError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NexusError) Unwrap() error {
	return e.Cause
}

// Is matches another NexusError by code, so sentinel values work with errors.Is.
func (e *NexusError) Is(target error) bool {
	if t, ok := target.(*NexusError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *NexusError) WithDetail(key, value string) *NexusError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *NexusError) WithSuggestion(suggestion string) *NexusError {
	e.Suggestion = suggestion
	return e
}

// New creates a new NexusError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *NexusError {
	return &NexusError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a NexusError from an existing error.
// The error's message becomes the NexusError message.
func Wrap(code string, err error) *NexusError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *NexusError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// SourceUnavailable reports an index source that could not be read.
func SourceUnavailable(source string, cause error) *NexusError {
	return New(ErrCodeIndexSourceUnavailable, "index source unavailable: "+source, cause).
		WithDetail("source", source)
}

// LaunchError creates a launch failure for the named entry.
func LaunchError(name string, cause error) *NexusError {
	return New(ErrCodeLaunchFailed, "could not launch "+name, cause).WithDetail("entry", name)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *NexusError {
	return New(ErrCodeInternal, message, cause)
}

func asNexus(err error) (*NexusError, bool) {
	var ne *NexusError
	if err == nil || !stderrors.As(err, &ne) {
		return nil, false
	}
	return ne, true
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	ne, ok := asNexus(err)
	return ok && ne.Retryable
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	ne, ok := asNexus(err)
	return ok && ne.Severity == SeverityFatal
}

// GetCode extracts the error code from the first NexusError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if ne, ok := asNexus(err); ok {
		return ne.Code
	}
	return ""
}

// HasCode reports whether any NexusError in the chain carries code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &NexusError{Code: code})
}
