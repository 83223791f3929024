package prompts

import (
	"log/slog"

	"github.com/phrazzld/grover/internal/generation"
)

type expansionData struct {
	Original string
	Previous string
	Reason   string
	Words    int
	Target   int
	Deficit  int
	Missing  []string
	Fields   []string
}

// Expansion returns a generation.ExpansionFunc that picks a corrective prompt
// by failure kind. Short drafts are expanded by the reported deficit, drafts
// missing keywords are revised to include them, and structured replies
// missing fields restate the original request. Empty drafts and backend
// failures re-send the original prompt.
func (c *Catalog) Expansion(original string) generation.ExpansionFunc {
	return func(previous string, failure generation.Failure) string {
		data := expansionData{
			Original: original,
			Previous: previous,
			Reason:   failure.Reason(),
			Words:    generation.WordCount(previous),
			Target:   failure.Target,
			Deficit:  failure.Deficit,
			Missing:  failure.Missing,
			Fields:   failure.Fields,
		}

		name := expandRetryTemplate
		switch {
		case failure.Validator == generation.ReasonRequiredFields:
			name = expandFieldsTemplate
		case previous == "":
			name = expandRetryTemplate
		case failure.Validator == generation.ReasonMinWordCount:
			name = expandWordsTemplate
		case failure.Validator == generation.ReasonKeywordCoverage:
			name = expandKeywordsTemplate
		}

		prompt, err := c.render(name, data)
		if err != nil {
			slog.Error("failed to render expansion prompt",
				slog.String("template", name),
				slog.String("error", err.Error()))
			return original
		}
		return prompt
	}
}
