package generation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Usage reports token consumption for one or more backend calls.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// TotalTokens returns the sum of prompt and completion tokens.
func (u Usage) TotalTokens() int64 {
	return u.PromptTokens + u.CompletionTokens
}

// Add returns the element-wise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
	}
}

// Completion is the raw result of one backend call.
type Completion struct {
	Text  string
	Usage Usage
}

// Generator defines the boundary between the application core and external
// text-generation services. Implementations may be slow and may fail
// transiently; the Controller does not retry at the transport level.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Completion, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (Completion, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (Completion, error) {
	return f(ctx, prompt)
}

// TextGenerator adapts a plain prompt-to-text function that reports no usage.
func TextGenerator(fn func(ctx context.Context, prompt string) (string, error)) Generator {
	return GeneratorFunc(func(ctx context.Context, prompt string) (Completion, error) {
		text, err := fn(ctx, prompt)
		return Completion{Text: text}, err
	})
}

// RateLimited wraps gen so that every call first waits on limiter.
// A nil limiter returns gen unchanged.
func RateLimited(gen Generator, limiter *rate.Limiter) Generator {
	if limiter == nil {
		return gen
	}
	return GeneratorFunc(func(ctx context.Context, prompt string) (Completion, error) {
		if err := limiter.Wait(ctx); err != nil {
			return Completion{}, fmt.Errorf("%w: rate limiter: %v", ErrTransientFailure, err)
		}
		return gen.Generate(ctx, prompt)
	})
}

// WithTimeout bounds each call to gen by d. A non-positive d returns gen unchanged.
func WithTimeout(gen Generator, d time.Duration) Generator {
	if d <= 0 {
		return gen
	}
	return GeneratorFunc(func(ctx context.Context, prompt string) (Completion, error) {
		callCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return gen.Generate(callCtx, prompt)
	})
}

// PerMinute returns a limiter allowing n calls per minute with a burst of one.
// A non-positive n returns nil, meaning unlimited.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}
