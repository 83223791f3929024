// Package usage prices token usage and keeps the per-iteration history shown
// to the user.
package usage

import (
	"time"

	"github.com/phrazzld/grover/internal/generation"
)

// Pricing is the per-million-token cost of a model.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Costs is the priced form of one usage record.
type Costs struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
	Tokens     int64   `json:"tokens"`
}

// Cost prices u.
func (p Pricing) Cost(u generation.Usage) Costs {
	in := float64(u.PromptTokens) / 1_000_000 * p.InputPerMillion
	out := float64(u.CompletionTokens) / 1_000_000 * p.OutputPerMillion
	return Costs{
		InputCost:  in,
		OutputCost: out,
		TotalCost:  in + out,
		Tokens:     u.TotalTokens(),
	}
}

// Entry records one generation attempt.
type Entry struct {
	Operation        string    `json:"operation,omitempty"`
	Iteration        int       `json:"iteration"`
	Timestamp        time.Time `json:"timestamp"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	Costs            Costs     `json:"costs"`
}

// EntriesFromOutcome returns one entry per attempt in o.
func EntriesFromOutcome(operation string, o generation.Outcome, p Pricing, now time.Time) []Entry {
	entries := make([]Entry, 0, len(o.Attempts))
	for _, a := range o.Attempts {
		entries = append(entries, Entry{
			Operation:        operation,
			Iteration:        a.Number,
			Timestamp:        now.UTC(),
			PromptTokens:     a.Usage.PromptTokens,
			CompletionTokens: a.Usage.CompletionTokens,
			Costs:            p.Cost(a.Usage),
		})
	}
	return entries
}

// Summary totals a usage history.
type Summary struct {
	Entries          int     `json:"entries"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalCost        float64 `json:"total_cost"`
}

// Summarize totals entries.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		s.Entries++
		s.PromptTokens += e.PromptTokens
		s.CompletionTokens += e.CompletionTokens
		s.TotalCost += e.Costs.TotalCost
	}
	return s
}
