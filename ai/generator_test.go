package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(adapter Adapter, opts GeneratorOptions) *Generator {
	r := NewRegistry(adapter.Name(), nil, testLogger(), adapter)
	return NewGenerator(r, opts, nil, testLogger())
}

func TestGenerateSuccess(t *testing.T) {
	adapter := &stubAdapter{name: "openai", reply: "Greetings, traveler."}
	g := newTestGenerator(adapter, GeneratorOptions{})

	reply, err := g.Generate(context.Background(), Profile{Name: "Nova"}, nil, "hello")

	require.NoError(t, err)
	assert.Equal(t, "Greetings, traveler.", reply)
	assert.Equal(t, 1, adapter.calls)
}

func TestGenerateProviderFailureUsesFallback(t *testing.T) {
	adapter := &stubAdapter{
		name: "openai",
		err:  NewProviderError("openai", ErrorKindTransient, errors.New("rate limited")),
	}
	g := newTestGenerator(adapter, GeneratorOptions{})

	profile := Profile{
		Name:             "Nova",
		FallbackResponse: "My signal is weak out here. Ask me again in a moment.",
	}

	reply, err := g.Generate(context.Background(), profile, nil, "hello")

	require.NoError(t, err)
	assert.Equal(t, "My signal is weak out here. Ask me again in a moment.", reply)
}

func TestGenerateProviderFailureWithoutFallback(t *testing.T) {
	adapter := &stubAdapter{
		name: "openai",
		err:  NewProviderError("openai", ErrorKindPermanent, errors.New("invalid key")),
	}
	g := newTestGenerator(adapter, GeneratorOptions{})

	_, err := g.Generate(context.Background(), Profile{Name: "Nova"}, nil, "hello")

	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateSingleAttemptNoRetry(t *testing.T) {
	adapter := &stubAdapter{
		name: "openai",
		err:  NewProviderError("openai", ErrorKindTransient, errors.New("upstream 503")),
	}
	g := newTestGenerator(adapter, GeneratorOptions{})

	_, _ = g.Generate(context.Background(), Profile{Name: "Nova"}, nil, "hello")

	assert.Equal(t, 1, adapter.calls)
}

func TestGenerateEmptyRegistry(t *testing.T) {
	r := NewRegistry("openai", nil, testLogger())
	g := NewGenerator(r, GeneratorOptions{}, nil, testLogger())

	_, err := g.Generate(context.Background(), Profile{Name: "Nova"}, nil, "hello")

	assert.ErrorIs(t, err, ErrNotConfigured)
}

type slowAdapter struct {
	delay time.Duration
}

func (s *slowAdapter) Name() string { return "slow" }

func (s *slowAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	select {
	case <-time.After(s.delay):
		return "too late", nil
	case <-ctx.Done():
		return "", NewProviderError("slow", ErrorKindTransient, ctx.Err())
	}
}

func TestGenerateTimeoutFallsBack(t *testing.T) {
	g := newTestGenerator(&slowAdapter{delay: time.Second}, GeneratorOptions{Timeout: 10 * time.Millisecond})

	profile := Profile{Name: "Nova", FallbackResponse: "Hold that thought."}

	start := time.Now()
	reply, err := g.Generate(context.Background(), profile, nil, "hello")

	require.NoError(t, err)
	assert.Equal(t, "Hold that thought.", reply)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

type capturingAdapter struct {
	req GenerateRequest
}

func (c *capturingAdapter) Name() string { return "capture" }

func (c *capturingAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	c.req = req
	return "ok", nil
}

func TestGenerateWindowsHistoryBeforeAdapterCall(t *testing.T) {
	adapter := &capturingAdapter{}
	g := newTestGenerator(adapter, GeneratorOptions{HistoryWindow: 4})

	history := []Turn{
		{Role: "user", Content: "1"},
		{Role: "assistant", Content: "2"},
		{Role: "user", Content: "3"},
		{Role: "assistant", Content: "4"},
		{Role: "user", Content: "5"},
		{Role: "assistant", Content: "6"},
	}

	_, err := g.Generate(context.Background(), Profile{Name: "Nova"}, history, "next")

	require.NoError(t, err)
	require.Len(t, adapter.req.History, 4)
	assert.Equal(t, "3", adapter.req.History[0].Content)
	assert.Equal(t, "6", adapter.req.History[3].Content)
	assert.Equal(t, "next", adapter.req.UserMessage)
	assert.Contains(t, adapter.req.SystemPrompt, "You are Nova.")
}
