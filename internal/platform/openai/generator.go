package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/generation"
)

// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// Generator implements generation.Generator with chat completions. Each
// prompt is sent as a single user message.
type Generator struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
	logger          *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a generator from cfg. The SDK's own retries are
// disabled; the generation loop decides whether to call again.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		client:          openai.NewClient(opts...),
		model:           cfg.ModelName,
		maxOutputTokens: int64(cfg.MaxOutputTokens),
		logger:          logger.With(slog.String("component", "openai_generator"), slog.String("model", cfg.ModelName)),
	}, nil
}

// Generate sends prompt and returns the first choice's content.
func (g *Generator) Generate(ctx context.Context, prompt string) (generation.Completion, error) {
	if prompt == "" {
		return generation.Completion{}, ErrEmptyPrompt
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}
	if g.maxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(g.maxOutputTokens)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return generation.Completion{}, classifyError(err)
	}

	usage := generation.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) == 0 {
		return generation.Completion{Usage: usage}, fmt.Errorf("%w: empty choices", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return generation.Completion{Usage: usage}, fmt.Errorf("%w: content filtered", generation.ErrContentBlocked)
	}

	g.logger.DebugContext(ctx, "chat completion received",
		slog.Int("response_length", len(choice.Message.Content)),
		slog.Int64("prompt_tokens", usage.PromptTokens),
		slog.Int64("completion_tokens", usage.CompletionTokens))

	return generation.Completion{Text: choice.Message.Content, Usage: usage}, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: openai API returned %d: %s", generation.ErrTransientFailure, apiErr.StatusCode, apiErr.Message)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: openai API returned %d: %s", generation.ErrInvalidConfig, apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: openai API returned %d: %s", generation.ErrGenerationFailed, apiErr.StatusCode, apiErr.Message)
	}

	return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
}
