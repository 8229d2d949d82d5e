package llm

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient 503", NewTransientError("openai", "overloaded", 503, nil), true},
		{"rate limit", NewRateLimitError("anthropic", "rate limited", nil), true},
		{"configuration", NewConfigurationError("anthropic", "missing API key"), false},
		{"unsupported operation", NewUnsupportedOperationError("anthropic", "generate_embedding"), false},
		{"provider error", NewProviderError("ollama", "bad request", nil), false},
		{"status 500 without flag", &Error{Type: ErrorTypeProvider, StatusCode: 500}, true},
		{"status 429 without flag", &Error{Type: ErrorTypeProvider, StatusCode: 429}, true},
		{"status 400", &Error{Type: ErrorTypeInvalidRequest, StatusCode: 400}, false},
		{"connection reset text", errors.New("read tcp: connection reset by peer"), true},
		{"econnreset", fmt.Errorf("dial: %w", syscall.ECONNRESET), true},
		{"wrapped econnreset", NewProviderError("openai", "openai API error", fmt.Errorf("read tcp 10.0.0.1:443: %w", syscall.ECONNRESET)), true},
		{"wrapped reset text", NewProviderError("anthropic", "anthropic API error", errors.New("read tcp: connection reset by peer")), true},
		{"wrapped plain cause", NewProviderError("openai", "openai API error", errors.New("boom")), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	cfgErr := NewConfigurationError("anthropic", "missing API key")
	if !IsConfigurationError(cfgErr) {
		t.Error("expected configuration error")
	}
	if IsConfigurationError(NewRateLimitError("anthropic", "rate limited", nil)) {
		t.Error("rate limit should not be a configuration error")
	}

	unknownErr := NewUnknownProviderError("bedrock")
	if !IsUnknownProviderError(unknownErr) {
		t.Error("expected unknown provider error")
	}

	unsupportedErr := NewUnsupportedOperationError("anthropic", "generate_embedding")
	if !IsUnsupportedOperationError(unsupportedErr) {
		t.Error("expected unsupported operation error")
	}
	if unsupportedErr.Error() != "anthropic does not support generate_embedding" {
		t.Errorf("unexpected message: %s", unsupportedErr.Error())
	}

	if !IsRateLimitError(NewRateLimitError("openai", "rate limited", nil)) {
		t.Error("expected rate limit error")
	}

	// Predicates see through wrapping.
	wrapped := fmt.Errorf("call failed: %w", cfgErr)
	if !IsConfigurationError(wrapped) {
		t.Error("expected predicate to unwrap")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("underlying SDK error")
	err := NewProviderError("openai", "request failed", inner)

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach the provider error")
	}
	if err.Error() != "request failed: underlying SDK error" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestStatusFromError(t *testing.T) {
	if got := StatusFromError(NewTransientError("openai", "overloaded", 503, nil)); got != 503 {
		t.Errorf("StatusFromError = %d, want 503", got)
	}
	if got := StatusFromError(errors.New("plain")); got != 0 {
		t.Errorf("StatusFromError = %d, want 0", got)
	}
}
