package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned when a provider name is not registered
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNotConfigured is returned when no provider has usable credentials
	ErrNotConfigured = errors.New("no AI provider configured")
	// ErrGenerationUnavailable is returned when generation failed and the
	// character defines no fallback response
	ErrGenerationUnavailable = errors.New("response generation unavailable")
)

// ErrorKind classifies a provider failure
type ErrorKind string

const (
	// ErrorKindTransient covers timeouts, rate limits and upstream outages
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindPermanent covers bad credentials and invalid requests
	ErrorKindPermanent ErrorKind = "permanent"
)

// ProviderError wraps a vendor failure with the provider name and a
// classification. Vendor details stay in the Err field and are logged,
// never returned to clients.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s failure: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a classified provider error
func NewProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// Turn is one prior message in a conversation, oldest first
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// GenerateRequest carries everything an adapter needs for one completion
type GenerateRequest struct {
	SystemPrompt string
	History      []Turn
	UserMessage  string
}

// Adapter generates a single character reply from one upstream vendor.
// Implementations make exactly one attempt; retry policy belongs to the
// caller, not the adapter.
type Adapter interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
