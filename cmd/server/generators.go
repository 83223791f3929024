package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/platform/gemini"
	"github.com/phrazzld/grover/internal/platform/openai"
)

// backendFactory builds a raw backend for one model.
type backendFactory func(ctx context.Context, cfg config.LLMConfig) (generation.Generator, error)

// generatorSource builds one backend per model on first use. Every backend
// shares one rate limiter and each call is bounded by the request timeout.
type generatorSource struct {
	cfg     config.LLMConfig
	build   backendFactory
	limiter *rate.Limiter

	mu    sync.Mutex
	cache map[string]generation.Generator
}

func newGeneratorSource(cfg config.LLMConfig, l *slog.Logger) (*generatorSource, error) {
	build, err := providerFactory(cfg.Provider, l)
	if err != nil {
		return nil, err
	}
	src := newGeneratorSourceWith(cfg, build)

	// Build the default backend up front so configuration errors fail startup.
	if _, err := src.Generator(""); err != nil {
		return nil, err
	}
	return src, nil
}

func newGeneratorSourceWith(cfg config.LLMConfig, build backendFactory) *generatorSource {
	return &generatorSource{
		cfg:     cfg,
		build:   build,
		limiter: generation.PerMinute(cfg.RequestsPerMinute),
		cache:   make(map[string]generation.Generator),
	}
}

func providerFactory(provider string, l *slog.Logger) (backendFactory, error) {
	switch provider {
	case "gemini":
		return func(ctx context.Context, cfg config.LLMConfig) (generation.Generator, error) {
			return gemini.NewGeminiGenerator(ctx, l, cfg)
		}, nil
	case "openai":
		return func(_ context.Context, cfg config.LLMConfig) (generation.Generator, error) {
			return openai.NewGenerator(l, cfg)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, provider)
	}
}

// Generator returns the backend for model. An empty model selects the
// configured model.
func (s *generatorSource) Generator(model string) (generation.Generator, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = s.cfg.ModelName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen, ok := s.cache[model]; ok {
		return gen, nil
	}

	cfg := s.cfg
	cfg.ModelName = model
	raw, err := s.build(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator for model %s: %w", model, err)
	}

	// The limiter wait does not count against the request timeout.
	gen := generation.RateLimited(generation.WithTimeout(raw, cfg.RequestTimeout()), s.limiter)
	s.cache[model] = gen
	return gen, nil
}
