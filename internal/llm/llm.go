// Package llm wraps the text generation providers behind one small interface.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized means the provider rejected the credentials.
	ErrUnauthorized = errors.New("provider rejected the API key")
	// ErrRateLimited means the provider asked us to slow down.
	ErrRateLimited = errors.New("provider rate limit reached")
	// ErrUnavailable means the provider failed on its side.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrEmptyResponse means the provider answered with no text.
	ErrEmptyResponse = errors.New("provider returned no content")
)

// Usage is the token accounting reported by a provider, when available.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ContentResponse contains the generated text and token usage.
type ContentResponse struct {
	Content string
	Usage   Usage
}

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
	Close() error
}
