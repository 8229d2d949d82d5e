package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
)

// Error represents a provider-neutral LLM error.
type Error struct {
	Type        ErrorType
	Message     string
	Retryable   bool
	StatusCode  int
	Provider    string
	ProviderErr error // Original provider-specific error
}

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeConfiguration   ErrorType = "configuration"
	ErrorTypeUnknownProvider ErrorType = "unknown_provider"
	ErrorTypeUnsupported     ErrorType = "unsupported_operation"
	ErrorTypeRateLimit       ErrorType = "rate_limit"
	ErrorTypeTransient       ErrorType = "transient"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeProvider        ErrorType = "provider"
)

// ErrNoProviderAvailable is returned by the manager when no backend resolves
// for a dispatch: nothing was configured, or every construction failed.
var ErrNoProviderAvailable = errors.New("no backend available")

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// NewConfigurationError creates an error for a missing credential or setting.
// Configuration errors are fatal and never retried.
func NewConfigurationError(provider, message string) *Error {
	return &Error{
		Type:     ErrorTypeConfiguration,
		Message:  message,
		Provider: provider,
	}
}

// NewUnknownProviderError creates the error raised by the factory when asked
// to build an unmapped backend kind.
func NewUnknownProviderError(kind string) *Error {
	return &Error{
		Type:    ErrorTypeUnknownProvider,
		Message: fmt.Sprintf("unknown provider kind: %s", kind),
	}
}

// NewUnsupportedOperationError creates the error raised when a capability is
// genuinely absent on a backend. It is fatal for that adapter but a
// legitimate reason to continue down a fallback chain.
func NewUnsupportedOperationError(provider, operation string) *Error {
	return &Error{
		Type:     ErrorTypeUnsupported,
		Message:  fmt.Sprintf("%s does not support %s", provider, operation),
		Provider: provider,
	}
}

// NewRateLimitError creates a retryable 429 error.
func NewRateLimitError(provider, message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRateLimit,
		Message:     message,
		Retryable:   true,
		StatusCode:  http.StatusTooManyRequests,
		Provider:    provider,
		ProviderErr: providerErr,
	}
}

// NewTransientError creates a retryable server-side error.
func NewTransientError(provider, message string, statusCode int, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeTransient,
		Message:     message,
		Retryable:   true,
		StatusCode:  statusCode,
		Provider:    provider,
		ProviderErr: providerErr,
	}
}

// NewProviderError creates a fatal provider error.
func NewProviderError(provider, message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeProvider,
		Message:     message,
		Provider:    provider,
		ProviderErr: providerErr,
	}
}

// IsConfigurationError checks whether err is a configuration error.
func IsConfigurationError(err error) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Type == ErrorTypeConfiguration
}

// IsUnknownProviderError checks whether err reports an unmapped backend kind.
func IsUnknownProviderError(err error) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Type == ErrorTypeUnknownProvider
}

// IsUnsupportedOperationError checks whether err reports an absent capability.
func IsUnsupportedOperationError(err error) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Type == ErrorTypeUnsupported
}

// IsRateLimitError checks whether err is a rate limit error.
func IsRateLimitError(err error) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Type == ErrorTypeRateLimit
}

// IsRetryable classifies an error as retryable or fatal. An error is
// retryable iff its status code is >=500, equals 429, or the connection was
// reset. Everything else propagates immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		if llmErr.Retryable {
			return true
		}
		if llmErr.StatusCode >= http.StatusInternalServerError ||
			llmErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if llmErr.ProviderErr == nil {
			return false
		}
		// A reset connection surfaces as a transport error the adapter wraps
		// without a status code; classify by the cause.
		err = llmErr.ProviderErr
	}

	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return strings.Contains(err.Error(), "connection reset")
}

// StatusFromError extracts the HTTP status code carried by err, or 0.
func StatusFromError(err error) int {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.StatusCode
	}
	return 0
}
