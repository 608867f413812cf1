package gpt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"text\":\"Hi\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`)
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL
	c := newClient(cfg, "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	out, err := c.Generate(context.Background(), "system", "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"text":"Hi"}`, out)

	assert.Equal(t, openai.GPT4oMini, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestGenerateApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`)
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL
	c := newClient(cfg, "gpt-4o", slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.Generate(context.Background(), "system", "hello")
	assert.ErrorContains(t, err, "quota exceeded")
}
