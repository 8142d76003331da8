package ai

import (
	"context"
	"errors"

	"github.com/kiyo9w/Imacall-backend/pkg/resilience"
)

// BreakerAdapter wraps an Adapter with a circuit breaker so a flapping
// provider short-circuits into the fallback path instead of timing out
// every request.
type BreakerAdapter struct {
	inner   Adapter
	breaker *resilience.CircuitBreaker
}

// WithBreaker wraps the adapter in the given circuit breaker
func WithBreaker(inner Adapter, breaker *resilience.CircuitBreaker) *BreakerAdapter {
	return &BreakerAdapter{inner: inner, breaker: breaker}
}

func (b *BreakerAdapter) Name() string {
	return b.inner.Name()
}

func (b *BreakerAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var reply string

	err := b.breaker.Execute(func() error {
		var genErr error
		reply, genErr = b.inner.Generate(ctx, req)
		return genErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return "", NewProviderError(b.inner.Name(), ErrorKindTransient, err)
		}
		return "", err
	}

	return reply, nil
}
