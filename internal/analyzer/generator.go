package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when no credential for the text-generation
// service was supplied.
var ErrNotConfigured = errors.New("text generation service not configured")

var errEmptyCompletion = errors.New("empty completion")

// CompletionRequest is one prompt for the text-generation service.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Generator produces a text completion. Implementations may fail on
// transport, auth or rate limits and may return text of any shape.
type Generator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator talks to any OpenAI-compatible chat completion endpoint,
// Groq included.
type OpenAIGenerator struct {
	client   chatClient
	model    string
	provider string
}

// NewOpenAIGenerator returns ErrNotConfigured when apiKey is empty.
func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	cfg := openai.DefaultConfig(apiKey)
	provider := "openai"
	if baseURL != "" {
		cfg.BaseURL = baseURL
		provider = providerName(baseURL)
	}
	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: provider,
	}, nil
}

func providerName(baseURL string) string {
	switch {
	case strings.Contains(baseURL, "groq"):
		return "groq"
	case strings.Contains(baseURL, "openai.com"):
		return "openai"
	default:
		return "openai-compatible"
	}
}

func (g *OpenAIGenerator) Model() string    { return g.model }
func (g *OpenAIGenerator) Provider() string { return g.provider }

func (g *OpenAIGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Failure classes for generation calls.
const (
	FailureTimeout     = "timeout"
	FailureCanceled    = "canceled"
	FailureRateLimited = "rate_limited"
	FailureAuth        = "auth"
	FailureAPI         = "api_error"
	FailureEmpty       = "empty"
	FailureTransport   = "transport"
	FailureUnavailable = "not_configured"
)

// FailureClass names the kind of error a generation call ended with.
func FailureClass(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return FailureUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, errEmptyCompletion):
		return FailureEmpty
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusClass(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusClass(reqErr.HTTPStatusCode)
	}
	return FailureTransport
}

func statusClass(status int) string {
	switch {
	case status == 429:
		return FailureRateLimited
	case status == 401 || status == 403:
		return FailureAuth
	case status == 408 || status == 504:
		return FailureTimeout
	case status == 0:
		return FailureTransport
	default:
		return FailureAPI
	}
}
