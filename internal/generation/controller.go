package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/grover/internal/platform/logger"
)

// Controller runs bounded generate/validate loops. It holds no per-request
// state, so one Controller may serve concurrent calls to Run as long as the
// supplied Generator is itself safe for concurrent use.
type Controller struct {
	logger *slog.Logger
}

// NewController creates a Controller. If l is nil, slog.Default() is used.
func NewController(l *slog.Logger) *Controller {
	if l == nil {
		l = slog.Default()
	}
	return &Controller{logger: l.With(slog.String("component", "generation_controller"))}
}

// Run drives req through gen. The first attempt sends req.Prompt; each
// rejected attempt is followed by a prompt from req.Expand built on the
// rejected payload. Backend errors and panics are recorded as a failed
// attempt with an empty payload. Run never returns an error and never panics.
func (c *Controller) Run(ctx context.Context, req Request, gen Generator) Outcome {
	log := logger.FromContextOrDefault(ctx, c.logger).With(slog.String("request", req.Name))

	maxAttempts := req.MaxAttempts
	if maxAttempts < 1 {
		log.Warn("invalid max attempts value, using single attempt",
			slog.Int("max_attempts", req.MaxAttempts))
		maxAttempts = 1
	}

	var outcome Outcome
	prompt := req.Prompt

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		started := time.Now()
		completion, err := c.call(ctx, log, gen, prompt)

		var payload string
		var failure *Failure
		if err != nil {
			f := generateFailure(err)
			failure = &f
			log.Warn("generation attempt failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
		} else {
			payload = Extract(completion.Text)
			failure = c.validate(log, req.Validators, payload)
		}

		outcome.Payload = payload
		outcome.RawLastResponse = completion.Text
		outcome.AttemptsUsed = attempt
		outcome.Usage = outcome.Usage.Add(completion.Usage)
		outcome.Attempts = append(outcome.Attempts, Attempt{
			Number:   attempt,
			Usage:    completion.Usage,
			Failure:  failure,
			Duration: time.Since(started),
		})

		if failure == nil {
			outcome.Succeeded = true
			outcome.Failure = nil
			log.Debug("generation attempt accepted",
				slog.Int("attempt", attempt),
				slog.Int("words", WordCount(payload)))
			return outcome
		}

		outcome.Failure = failure
		log.Debug("generation attempt rejected",
			slog.Int("attempt", attempt),
			slog.Int("prompt_length", len(prompt)),
			slog.String("reason", failure.Reason()))

		if attempt < maxAttempts {
			prompt = c.expand(log, req, prompt, payload, *failure)
		}
	}

	log.Info("generation attempts exhausted",
		slog.Int("attempts", outcome.AttemptsUsed),
		slog.String("reason", outcome.FailureReason()))
	return outcome
}

// call invokes gen, converting a missing generator or a panic into an error.
func (c *Controller) call(ctx context.Context, log *slog.Logger, gen Generator, prompt string) (completion Completion, err error) {
	if gen == nil {
		return Completion{}, ErrNoGenerator
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("generator panicked", slog.Any("panic", r))
			completion = Completion{}
			err = fmt.Errorf("%w: %v", ErrGeneratorPanic, r)
		}
	}()
	return gen.Generate(ctx, prompt)
}

// validate returns the first failure among validators. A panicking validator
// counts as a failure named after the panic.
func (c *Controller) validate(log *slog.Logger, validators []Validator, payload string) (failure *Failure) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("validator panicked", slog.Any("panic", r))
			failure = &Failure{Validator: "validator_panic", Message: fmt.Sprint(r)}
		}
	}()
	for _, v := range validators {
		if v == nil {
			continue
		}
		if f := v.Validate(payload); f != nil {
			return f
		}
	}
	return nil
}

// expand builds the next prompt. A nil or panicking ExpansionFunc, or one that
// returns an empty prompt, falls back to the current prompt.
func (c *Controller) expand(log *slog.Logger, req Request, current, payload string, failure Failure) (next string) {
	if req.Expand == nil {
		return current
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("expansion prompt builder panicked", slog.Any("panic", r))
			next = current
		}
	}()
	next = req.Expand(payload, failure)
	if next == "" {
		return current
	}
	return next
}
