package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestOpenAIGenerateContent(t *testing.T) {
	chat := &fakeChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: `{"ok":true}`}}},
		Usage:   openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
	c := newOpenAIWithClient(chat, "gpt-4o-mini", 0.3)

	resp, err := c.GenerateContent(context.Background(), "make soup")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, resp.Usage)

	assert.Equal(t, "gpt-4o-mini", chat.got.Model)
	assert.InDelta(t, 0.3, chat.got.Temperature, 1e-6)
	require.Len(t, chat.got.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, chat.got.Messages[0].Role)
	assert.Equal(t, "make soup", chat.got.Messages[0].Content)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	c := newOpenAIWithClient(&fakeChat{}, "m", 0)
	_, err := c.GenerateContent(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}, ErrUnauthorized},
		{"rate limited", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}, ErrRateLimited},
		{"server", &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newOpenAIWithClient(&fakeChat{err: tt.err}, "m", 0)
			_, err := c.GenerateContent(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	plain := errors.New("dial tcp: refused")
	c := newOpenAIWithClient(&fakeChat{err: plain}, "m", 0)
	_, err := c.GenerateContent(context.Background(), "x")
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
