package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hammamikhairi/ottocoach/internal/config"
)

// ChatClient captures the subset of the go-openai client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// openAIClient talks to OpenAI or any server speaking its chat API.
type openAIClient struct {
	chat        ChatClient
	model       string
	temperature float32
}

// NewOpenAI creates a chat completion client. cfg.OpenAIBaseURL points it
// at a compatible server (Ollama, Groq, a proxy).
func NewOpenAI(cfg *config.Config) (TextGenerator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai: %w", config.ErrMissingAPIKey)
	}
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	return newOpenAIWithClient(openai.NewClientWithConfig(oc), cfg.OpenAIModel, cfg.Temperature), nil
}

func newOpenAIWithClient(chat ChatClient, model string, temperature float32) *openAIClient {
	return &openAIClient{chat: chat, model: model, temperature: temperature}
}

// GenerateContent sends prompt as a single user message.
func (c *openAIClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return ContentResponse{}, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ContentResponse{}, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	return ContentResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Close is a no-op; the go-openai client holds no resources.
func (c *openAIClient) Close() error { return nil }

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("openai: %w: %v", ErrUnauthorized, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("openai: %w: %v", ErrRateLimited, err)
	case status >= 500:
		return fmt.Errorf("openai: %w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("openai chat completion: %w", err)
	}
}
