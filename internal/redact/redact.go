// Package redact removes secrets from strings before they are logged or
// returned in error responses: LLM and SEMrush API keys, session tokens,
// connection strings, file paths and SQL fragments.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

func newRule(expr, placeholder string) rule {
	return rule{pattern: regexp.MustCompile(expr), placeholder: placeholder}
}

// rules run in order. Credentials come first so that a key embedded in a URL
// or host name is replaced before the broader path and host rules see it.
var rules = []rule{
	// connection strings: postgres://user:pass@
	newRule(`(?i)(postgres|mysql|mongodb|redis|db|database|connection)://[^@]+@`, RedactedCredentialPlaceholder),
	newRule(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`, RedactedCredentialPlaceholder),

	// OpenAI secret keys, then Google (Gemini) API keys
	newRule(`\bsk-(?:proj-)?[A-Za-z0-9_-]{16,}`, RedactedKeyPlaceholder),
	newRule(`\bAIza[0-9A-Za-z_-]{30,}`, RedactedKeyPlaceholder),
	// generic key=value pairs, including the SEMrush ?key= query parameter
	newRule(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`, RedactedKeyPlaceholder),
	newRule(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`, RedactedKeyPlaceholder),
	// signed session cookies
	newRule(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`, "[REDACTED_JWT]"),

	newRule(`(/[\w.-]+){2,}`, RedactedPathPlaceholder),
	newRule(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`, RedactedPathPlaceholder),
	newRule(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`, "[STACK_TRACE_REDACTED]"),
	newRule(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`, "[REDACTED_EMAIL]"),
	newRule(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|GRANT)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|DATABASE|SCHEMA|VIEW)(?:[\s\w,*()='"]+)?`,
		"[REDACTED_SQL]",
	),
	newRule(`(?:at )?line ?\d+`, "[REDACTED_LINE_NUMBER]"),
	newRule(`(?i)syntax error|syntax problem|parse error`, "[REDACTED_SYNTAX_ERROR]"),
	newRule(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`, "[REDACTED_HOST]"),
	newRule(`(?i)(?:no such file|file not found|can't open|cannot open|file error)`, "[REDACTED_FILE_ERROR]"),
}

// String returns input with every sensitive fragment replaced by its placeholder.
func String(input string) string {
	for _, r := range rules {
		if input == "" {
			break
		}
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error is String applied to err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
