package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter generates replies through the OpenAI chat completions API.
// It also backs the OpenRouter adapter, which speaks the same protocol
// behind a different base URL.
type OpenAIAdapter struct {
	name   string
	client *openai.Client
	model  string
}

// NewOpenAIAdapter creates an adapter for api.openai.com
func NewOpenAIAdapter(apiKey, model string) *OpenAIAdapter {
	return &OpenAIAdapter{
		name:   "openai",
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// NewOpenRouterAdapter creates an adapter for the OpenRouter gateway, which
// is wire-compatible with the OpenAI API
func NewOpenRouterAdapter(apiKey, model string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = "https://openrouter.ai/api/v1"
	return &OpenAIAdapter{
		name:   "openrouter",
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (a *OpenAIAdapter) Name() string {
	return a.name
}

func (a *OpenAIAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})

	for _, turn := range req.History {
		role := openai.ChatMessageRoleAssistant
		if turn.Role == "user" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return "", NewProviderError(a.name, classifyOpenAIError(err), err)
	}

	if len(resp.Choices) == 0 {
		return "", NewProviderError(a.name, ErrorKindTransient, fmt.Errorf("empty completion response"))
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", NewProviderError(a.name, ErrorKindTransient, fmt.Errorf("empty completion content"))
	}

	return reply, nil
}

func classifyOpenAIError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorKindTransient
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return ErrorKindTransient
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return ErrorKindTransient
		default:
			return ErrorKindPermanent
		}
	}

	// Network-level failures without an API status are worth retrying later
	return ErrorKindTransient
}
