package generation

import "time"

// ExpansionFunc builds the next prompt from the previous attempt's payload and
// the reason it was rejected.
type ExpansionFunc func(previous string, failure Failure) string

// Request describes one content-generation run.
type Request struct {
	// Name labels the request in logs, e.g. "article_content".
	Name string
	// Prompt is sent on the first attempt.
	Prompt string
	// Validators are evaluated in order; the first failure wins. An empty
	// list accepts any payload.
	Validators []Validator
	// MaxAttempts bounds the number of generate/validate cycles. Values below
	// one are treated as one.
	MaxAttempts int
	// Expand builds corrective prompts. When nil the current prompt is reused.
	Expand ExpansionFunc
}

// Attempt records the diagnostics of one generate/validate cycle.
type Attempt struct {
	Number   int           `json:"number"`
	Usage    Usage         `json:"usage"`
	Failure  *Failure      `json:"failure,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Outcome is the result of Controller.Run.
//
// When Succeeded is true, Failure is nil and Payload satisfies every
// validator. When false, AttemptsUsed equals the attempt budget and Payload is
// the last extracted output, which may be empty.
type Outcome struct {
	Payload         string    `json:"payload"`
	Succeeded       bool      `json:"succeeded"`
	AttemptsUsed    int       `json:"attempts_used"`
	Failure         *Failure  `json:"failure,omitempty"`
	RawLastResponse string    `json:"raw_last_response"`
	Usage           Usage     `json:"usage"`
	Attempts        []Attempt `json:"attempts"`
}

// FailureReason returns the rendered failure, or "" on success.
func (o Outcome) FailureReason() string {
	if o.Failure == nil {
		return ""
	}
	return o.Failure.Reason()
}
