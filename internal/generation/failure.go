package generation

import (
	"fmt"
	"strings"
)

// Validator identifiers reported in Failure.Validator.
const (
	ReasonGenerate        = "generate"
	ReasonNonEmpty        = "non_empty"
	ReasonMinWordCount    = "min_word_count"
	ReasonKeywordCoverage = "keyword_coverage"
	ReasonRequiredFields  = "required_fields"
)

// Failure describes why an attempt was rejected. Only the fields relevant to
// the failing validator are set.
type Failure struct {
	// Validator identifies the failing check, e.g. ReasonMinWordCount.
	Validator string `json:"validator"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Deficit is the number of words missing for ReasonMinWordCount.
	Deficit int `json:"deficit,omitempty"`
	// Target is the requested minimum for ReasonMinWordCount.
	Target int `json:"target,omitempty"`
	// Missing lists keywords absent from the payload, in the order requested.
	Missing []string `json:"missing,omitempty"`
	// Fields lists absent or empty structured fields.
	Fields []string `json:"fields,omitempty"`
	// Err holds the backend error for ReasonGenerate.
	Err error `json:"-"`
}

// Reason renders the failure as "validator: message".
func (f Failure) Reason() string {
	if f.Message == "" {
		return f.Validator
	}
	return f.Validator + ": " + f.Message
}

// String implements fmt.Stringer.
func (f Failure) String() string {
	return f.Reason()
}

func generateFailure(err error) Failure {
	return Failure{
		Validator: ReasonGenerate,
		Message:   fmt.Sprintf("generation call failed: %v", err),
		Err:       err,
	}
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
