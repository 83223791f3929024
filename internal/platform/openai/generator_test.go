package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	mu     sync.Mutex
	path   string
	auth   string
	body   map[string]any
	called int
}

func newTestGenerator(t *testing.T, status int, response string) (*Generator, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.called++
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	g, err := NewGenerator(slog.New(slog.NewTextHandler(io.Discard, nil)), config.LLMConfig{
		OpenAIAPIKey:    "sk-test",
		ModelName:       "gpt-4o-mini",
		BaseURL:         srv.URL + "/v1",
		MaxOutputTokens: 2048,
	})
	require.NoError(t, err)
	return g, rec
}

func TestGenerator_Generate(t *testing.T) {
	g, rec := newTestGenerator(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": "Hello from the model"}
		}],
		"usage": {"prompt_tokens": 9, "completion_tokens": 4, "total_tokens": 13}
	}`)

	got, err := g.Generate(context.Background(), "Say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the model", got.Text)
	assert.Equal(t, generation.Usage{PromptTokens: 9, CompletionTokens: 4}, got.Usage)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "/v1/chat/completions", rec.path)
	assert.Equal(t, "Bearer sk-test", rec.auth)
	assert.Equal(t, "gpt-4o-mini", rec.body["model"])
	assert.EqualValues(t, 2048, rec.body["max_completion_tokens"])
	messages, ok := rec.body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "Say hello", messages[0].(map[string]any)["content"])
}

func TestGenerator_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"message": "slow down", "type": "rate_limit", "code": "rate_limit_exceeded"}}`,
			want:   generation.ErrTransientFailure,
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error": {"message": "bad key", "type": "invalid_request_error", "code": "invalid_api_key"}}`,
			want:   generation.ErrInvalidConfig,
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`,
			want:   generation.ErrInvalidResponse,
		},
		{
			name:   "content filter",
			status: http.StatusOK,
			body: `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": [
				{"index": 0, "finish_reason": "content_filter", "message": {"role": "assistant", "content": ""}}]}`,
			want: generation.ErrContentBlocked,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, rec := newTestGenerator(t, tc.status, tc.body)
			_, err := g.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, tc.want)

			rec.mu.Lock()
			defer rec.mu.Unlock()
			assert.Equal(t, 1, rec.called, "the SDK does not retry")
		})
	}
}

func TestNewGenerator_Validation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewGenerator(nil, config.LLMConfig{OpenAIAPIKey: "k", ModelName: "m"})
	assert.Error(t, err)
	_, err = NewGenerator(logger, config.LLMConfig{ModelName: "m"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	_, err = NewGenerator(logger, config.LLMConfig{OpenAIAPIKey: "k"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
