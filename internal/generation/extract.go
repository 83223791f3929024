package generation

import (
	"encoding/json"
	"regexp"
	"strings"
)

// payloadFields are probed in priority order when a response is a JSON object.
var payloadFields = []string{"article", "article_content", "content"}

const maxNestedDepth = 4

var fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t]*$\n?")

// Extract recovers the payload from a raw backend response. The response may
// be plain prose or markdown, a JSON object holding the payload under a known
// field, or JSON wrapped in prose or code fences.
//
// Extract never panics. Plain text without braces is returned unchanged, and
// whitespace-only input yields "".
func Extract(raw string) string {
	text := StripFences(raw)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return text
	}

	if strings.HasPrefix(trimmed, "{") {
		if obj, ok := decodeObject(trimmed); ok {
			if payload, found := probe(obj, 0); found {
				return payload
			}
			return text
		}
	}

	for _, candidate := range candidates(trimmed) {
		at := strings.Index(trimmed, candidate)
		if !isWrapper(trimmed[:at]) || !isWrapper(trimmed[at+len(candidate):]) {
			continue
		}
		obj, ok := decodeObject(candidate)
		if !ok {
			continue
		}
		if payload, found := probe(obj, 0); found {
			return payload
		}
	}
	return text
}

// maxWrapperLen bounds the prose a model may put around an embedded object.
const maxWrapperLen = 160

// isWrapper reports whether s is short enough to be a conversational lead-in
// or sign-off ("Sure!", "Here you go:") rather than article text that happens
// to quote a JSON object. A wrapper is at most one sentence.
func isWrapper(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > maxWrapperLen {
		return false
	}
	sentences := 0
	inSentence := false
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b == '\n' || ((b == '.' || b == '!' || b == '?') && (i+1 == len(s) || isSpace(s[i+1]))):
			inSentence = false
		case !inSentence && isLetter(b):
			inSentence = true
			sentences++
		}
	}
	return sentences <= 1
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// StripFences removes triple-backtick fence lines, with or without a language
// tag, and a single-line fence wrapping the whole input. Input without such a
// fence is returned as is, including backticks that appear mid-line.
func StripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	if fenceLine.MatchString(s) {
		stripped := strings.TrimSpace(fenceLine.ReplaceAllString(s, ""))
		stripped = strings.TrimPrefix(stripped, "```")
		stripped = strings.TrimSuffix(stripped, "```")
		return strings.TrimSpace(stripped)
	}
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 6 && strings.HasPrefix(trimmed, "```") && strings.HasSuffix(trimmed, "```") {
		return strings.TrimSpace(trimmed[3 : len(trimmed)-3])
	}
	return s
}

// ParseObject recovers a JSON object from a payload that may be fenced or
// wrapped in prose. It reports false when no object can be decoded.
func ParseObject(payload string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(StripFences(payload))
	if trimmed == "" {
		return nil, false
	}
	if obj, ok := decodeObject(trimmed); ok {
		return obj, true
	}
	for _, candidate := range candidates(trimmed) {
		if obj, ok := decodeObject(candidate); ok {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// probe returns the first known payload field of obj, with fences and
// surrounding whitespace removed. A string value that is itself a JSON object
// is searched recursively, falling back to the string.
func probe(obj map[string]any, depth int) (string, bool) {
	for _, field := range payloadFields {
		value, ok := obj[field]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			inner := strings.TrimSpace(StripFences(v))
			if depth < maxNestedDepth {
				if strings.HasPrefix(inner, "{") {
					if nested, ok := decodeObject(inner); ok {
						if payload, found := probe(nested, depth+1); found {
							return payload, true
						}
					}
				}
			}
			return inner, true
		case map[string]any:
			if depth < maxNestedDepth {
				if payload, found := probe(v, depth+1); found {
					return payload, true
				}
			}
		}
	}
	return "", false
}

// candidates lists substrings of s that may hold a JSON object: the span from
// the first '{' to the last '}', followed by each balanced top-level object.
func candidates(s string) []string {
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first < 0 || last <= first {
		return nil
	}
	out := []string{s[first : last+1]}
	for _, c := range balancedObjects(s[first:]) {
		if c != out[0] {
			out = append(out, c)
		}
	}
	return out
}

// balancedObjects scans s for top-level {...} spans, skipping braces that
// appear inside JSON strings. Quotes outside an object are treated as prose.
func balancedObjects(s string) []string {
	var (
		found    []string
		depth    int
		start    = -1
		inString bool
		escape   bool
	)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					found = append(found, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return found
}
