package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiAdapter generates replies through the Gemini API
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a Gemini adapter
func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		model:  model,
	}, nil
}

func (a *GeminiAdapter) Name() string {
	return "gemini"
}

func (a *GeminiAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
	}

	// Gemini uses "user" and "model" roles
	history := make([]*genai.Content, 0, len(req.History))
	for _, turn := range req.History {
		role := genai.Role(genai.RoleModel)
		if turn.Role == "user" {
			role = genai.RoleUser
		}
		history = append(history, genai.NewContentFromText(turn.Content, role))
	}

	chat, err := a.client.Chats.Create(ctx, a.model, config, history)
	if err != nil {
		return "", NewProviderError(a.Name(), classifyGeminiError(err), err)
	}

	res, err := chat.SendMessage(ctx, genai.Part{Text: req.UserMessage})
	if err != nil {
		return "", NewProviderError(a.Name(), classifyGeminiError(err), err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", NewProviderError(a.Name(), ErrorKindTransient, fmt.Errorf("empty candidate response"))
	}

	reply := strings.TrimSpace(res.Candidates[0].Content.Parts[0].Text)
	if reply == "" {
		return "", NewProviderError(a.Name(), ErrorKindTransient, fmt.Errorf("empty candidate content"))
	}

	return reply, nil
}

func classifyGeminiError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorKindTransient
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return ErrorKindTransient
		case apiErr.Code >= http.StatusInternalServerError:
			return ErrorKindTransient
		default:
			return ErrorKindPermanent
		}
	}

	return ErrorKindTransient
}
