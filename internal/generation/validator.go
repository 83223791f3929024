package generation

import (
	"fmt"
	"strings"
)

// Validator is a named predicate over a payload. Validate returns nil when the
// payload passes and a Failure describing the problem otherwise.
type Validator interface {
	Validate(payload string) *Failure
}

// ValidatorFunc adapts an ordinary function to the Validator interface.
type ValidatorFunc func(payload string) *Failure

// Validate calls f(payload).
func (f ValidatorFunc) Validate(payload string) *Failure {
	return f(payload)
}

// Custom builds a Validator from a boolean check. When check returns false the
// failure carries name and message.
func Custom(name string, check func(payload string) (message string, ok bool)) Validator {
	return ValidatorFunc(func(payload string) *Failure {
		message, ok := check(payload)
		if ok {
			return nil
		}
		return &Failure{Validator: name, Message: message}
	})
}

// NonEmpty rejects payloads that are empty after trimming whitespace.
func NonEmpty() Validator {
	return ValidatorFunc(func(payload string) *Failure {
		if strings.TrimSpace(payload) != "" {
			return nil
		}
		return &Failure{Validator: ReasonNonEmpty, Message: "payload is empty"}
	})
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// MinWordCount rejects payloads with fewer than target words. The failure
// carries the deficit so a corrective prompt can ask for a precise number of
// additional words.
func MinWordCount(target int) Validator {
	return ValidatorFunc(func(payload string) *Failure {
		actual := WordCount(payload)
		if actual >= target {
			return nil
		}
		deficit := target - actual
		return &Failure{
			Validator: ReasonMinWordCount,
			Message:   fmt.Sprintf("%d words, %d short of the %d word target", actual, deficit, target),
			Deficit:   deficit,
			Target:    target,
		}
	})
}

// KeywordCoverage requires every keyword to occur in the payload as a
// case-insensitive substring. Blank keywords are ignored and duplicates are
// reported once.
func KeywordCoverage(keywords ...string) Validator {
	required := normalizeKeywords(keywords)
	return ValidatorFunc(func(payload string) *Failure {
		haystack := strings.ToLower(payload)
		var missing []string
		for _, kw := range required {
			if !strings.Contains(haystack, strings.ToLower(kw)) {
				missing = append(missing, kw)
			}
		}
		if len(missing) == 0 {
			return nil
		}
		return &Failure{
			Validator: ReasonKeywordCoverage,
			Message:   "missing keywords " + quoteAll(missing),
			Missing:   missing,
		}
	})
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// RequiredFields treats the payload as a structured record (see ParseObject)
// and requires each named field to be present and non-empty.
func RequiredFields(fields ...string) Validator {
	return ValidatorFunc(func(payload string) *Failure {
		obj, ok := ParseObject(payload)
		if !ok {
			return &Failure{
				Validator: ReasonRequiredFields,
				Message:   "payload is not a JSON object",
				Fields:    append([]string(nil), fields...),
			}
		}
		var absent []string
		for _, field := range fields {
			if !present(obj[field]) {
				absent = append(absent, field)
			}
		}
		if len(absent) == 0 {
			return nil
		}
		return &Failure{
			Validator: ReasonRequiredFields,
			Message:   "missing fields " + quoteAll(absent),
			Fields:    absent,
		}
	})
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// FieldString returns obj[field] rendered as text. Arrays are joined with
// newlines so list-shaped outlines read as one block.
func FieldString(obj map[string]any, field string) string {
	switch t := obj[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			lines = append(lines, fmt.Sprint(item))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(t)
	}
}
