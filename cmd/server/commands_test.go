package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/usage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRootCommandSubcommands(t *testing.T) {
	t.Parallel()

	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "generate"}, names)
}

func TestMigrateArgs(t *testing.T) {
	t.Parallel()

	cmd := newMigrateCommand()
	assert.NoError(t, migrateArgs(cmd, nil))
	assert.NoError(t, migrateArgs(cmd, []string{"status"}))
	assert.Error(t, migrateArgs(cmd, []string{"sideways"}))
	assert.Error(t, migrateArgs(cmd, []string{"up", "down"}))
}

func TestGenerateCommandRequiresPrompt(t *testing.T) {
	t.Parallel()

	cmd := newGenerateCommand()
	cmd.SetArgs([]string{"--min-words", "10"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt")
}

func TestGenerateOnce(t *testing.T) {
	t.Parallel()

	pricing := usage.Pricing{InputPerMillion: 1.10, OutputPerMillion: 4.40}

	t.Run("success prints outcome", func(t *testing.T) {
		t.Parallel()
		gen := generation.GeneratorFunc(func(context.Context, string) (generation.Completion, error) {
			return generation.Completion{
				Text:  "Memory care supports residents with dementia every day.",
				Usage: generation.Usage{PromptTokens: 100, CompletionTokens: 50},
			}, nil
		})

		var out bytes.Buffer
		err := generateOnce(context.Background(), &out, gen, generateFlags{
			prompt:      "Write about memory care",
			minWords:    5,
			keywords:    []string{"memory care"},
			maxAttempts: 2,
		}, pricing, testLogger())
		require.NoError(t, err)

		var report generateReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.True(t, report.Outcome.Succeeded)
		assert.Equal(t, 1, report.Outcome.AttemptsUsed)
		assert.Len(t, report.Usage, 1)
		assert.Equal(t, int64(150), report.Cost.Tokens)
	})

	t.Run("failure still prints outcome", func(t *testing.T) {
		t.Parallel()
		gen := generation.GeneratorFunc(func(context.Context, string) (generation.Completion, error) {
			return generation.Completion{Text: "too short"}, nil
		})

		var out bytes.Buffer
		err := generateOnce(context.Background(), &out, gen, generateFlags{
			prompt:      "Write a lot",
			minWords:    50,
			maxAttempts: 2,
		}, pricing, testLogger())
		require.ErrorIs(t, err, errGenerationFailed)
		assert.Contains(t, err.Error(), generation.ReasonMinWordCount)

		var report generateReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.False(t, report.Outcome.Succeeded)
		assert.Equal(t, 2, report.Outcome.AttemptsUsed)
		assert.True(t, strings.HasPrefix(report.Outcome.FailureReason(), generation.ReasonMinWordCount))
	})
}

// clearServiceEnv unsets the settings only serve and migrate need.
func clearServiceEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GROVER_DATABASE_URL", "")
	t.Setenv("GROVER_SESSION_SECRET", "")
}

func TestLoadRuntimeValidatesCommandGroups(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("GROVER_LLM_GEMINI_API_KEY", "test-api-key")

	cfg, l, err := loadRuntime(generateGroups...)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "test-api-key", cfg.LLM.GeminiAPIKey)

	_, _, err = loadRuntime(migrateGroups...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseConfig.URL")
	assert.NotContains(t, err.Error(), "SessionConfig")

	_, _, err = loadRuntime(serveGroups...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionConfig.Secret")
}

func TestGenerateCommandNeedsOnlyLLMSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Assisted living offers daily support."}
			}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 6, "total_tokens": 15}
		}`)
	}))
	t.Cleanup(srv.Close)

	clearServiceEnv(t)
	t.Setenv("GROVER_LLM_PROVIDER", "openai")
	t.Setenv("GROVER_LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("GROVER_LLM_MODEL_NAME", "gpt-4o-mini")
	t.Setenv("GROVER_LLM_BASE_URL", srv.URL+"/v1")

	var out bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetArgs([]string{"--prompt", "hello", "--min-words", "3"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())

	var report generateReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Outcome.Succeeded)
	assert.Equal(t, "Assisted living offers daily support.", report.Outcome.Payload)
}
