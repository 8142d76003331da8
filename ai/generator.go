package ai

import (
	"context"
	"time"

	"github.com/kiyo9w/Imacall-backend/pkg/logger"
	"github.com/kiyo9w/Imacall-backend/shared/observability"
)

// Generator produces character replies. It resolves the active adapter,
// makes a single attempt under a timeout, and degrades to the character's
// fallback response when the provider fails. It never touches storage;
// persistence belongs to the message service.
type Generator struct {
	registry *Registry
	timeout  time.Duration
	window   int
	metrics  *observability.GenerationMetrics
	log      *logger.Logger
}

// GeneratorOptions configures a Generator
type GeneratorOptions struct {
	// Timeout bounds a single provider attempt
	Timeout time.Duration
	// HistoryWindow caps how many recent turns are sent upstream
	HistoryWindow int
}

// NewGenerator creates a generator over the given registry
func NewGenerator(registry *Registry, opts GeneratorOptions, metrics *observability.GenerationMetrics, log *logger.Logger) *Generator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 20
	}
	return &Generator{
		registry: registry,
		timeout:  opts.Timeout,
		window:   opts.HistoryWindow,
		metrics:  metrics,
		log:      log,
	}
}

// Generate produces one reply for the user's message. History is oldest
// first and is windowed to the configured number of recent turns. On
// provider failure the character's fallback response is returned verbatim
// when present; otherwise ErrGenerationUnavailable.
func (g *Generator) Generate(ctx context.Context, profile Profile, history []Turn, userMessage string) (string, error) {
	adapter, err := g.registry.Resolve()
	if err != nil {
		return "", err
	}

	req := GenerateRequest{
		SystemPrompt: BuildSystemPrompt(profile),
		History:      WindowHistory(history, g.window),
		UserMessage:  userMessage,
	}

	provider := adapter.Name()
	g.metrics.RecordRequest(ctx, provider)

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	reply, err := adapter.Generate(genCtx, req)
	if err == nil {
		g.log.Debug("Generated character reply",
			"provider", provider,
			"character", profile.Name,
			"duration", time.Since(start).String(),
		)
		return reply, nil
	}

	g.metrics.RecordFailure(ctx, provider)
	g.log.Error("AI provider generation failed",
		"provider", provider,
		"character", profile.Name,
		"error", err.Error(),
	)

	if profile.FallbackResponse != "" {
		g.metrics.RecordFallback(ctx, provider)
		return profile.FallbackResponse, nil
	}

	return "", ErrGenerationUnavailable
}
