package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/generation"
	"google.golang.org/genai"
)

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger          *slog.Logger
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator for cfg.ModelName. cfg.BaseURL,
// when set, replaces the public API endpoint.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:          logger.With(slog.String("component", "gemini_generator"), slog.String("model", cfg.ModelName)),
		client:          client,
		model:           cfg.ModelName,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// Generate sends prompt to the model and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (generation.Completion, error) {
	if prompt == "" {
		return generation.Completion{}, ErrEmptyPrompt
	}

	var genConfig *genai.GenerateContentConfig
	if g.maxOutputTokens > 0 {
		genConfig = &genai.GenerateContentConfig{MaxOutputTokens: g.maxOutputTokens}
	}

	g.logger.DebugContext(ctx, "calling Gemini API", slog.Int("prompt_length", len(prompt)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return generation.Completion{}, classifyError(err)
	}

	usage := usageOf(resp)
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return generation.Completion{Usage: usage}, fmt.Errorf("%w: prompt blocked (%s)",
			generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return generation.Completion{Usage: usage}, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return generation.Completion{Usage: usage}, fmt.Errorf("%w: response blocked by safety filters",
			generation.ErrContentBlocked)
	}

	text := resp.Text()
	g.logger.DebugContext(ctx, "Gemini API call successful",
		slog.Int("response_length", len(text)),
		slog.Int64("prompt_tokens", usage.PromptTokens),
		slog.Int64("completion_tokens", usage.CompletionTokens))

	return generation.Completion{Text: text, Usage: usage}, nil
}

func usageOf(resp *genai.GenerateContentResponse) generation.Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return generation.Usage{}
	}
	return generation.Usage{
		PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
	}
}

// classifyError maps client errors onto the generation error values.
// Rate limiting, server errors and deadlines are transient.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: gemini API returned %d: %s", generation.ErrTransientFailure, apiErr.Code, apiErr.Message)
		case apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: gemini API returned %d: %s", generation.ErrInvalidConfig, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: gemini API returned %d: %s", generation.ErrGenerationFailed, apiErr.Code, apiErr.Message)
	}

	return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
}
