package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain prose unchanged",
			raw:  "Senior living offers community and care.",
			want: "Senior living offers community and care.",
		},
		{
			name: "markdown heading unchanged",
			raw:  "# Choosing Memory Care\n\nSome {braces} inside.",
			want: "# Choosing Memory Care\n\nSome {braces} inside.",
		},
		{
			name: "article field",
			raw:  `{"article": "body text"}`,
			want: "body text",
		},
		{
			name: "article_content wins over content",
			raw:  `{"article_content": "X", "content": "Y"}`,
			want: "X",
		},
		{
			name: "article wins over article_content",
			raw:  `{"content": "Z", "article_content": "Y", "article": "X"}`,
			want: "X",
		},
		{
			name: "content field",
			raw:  `{"content": "only content"}`,
			want: "only content",
		},
		{
			name: "nested json-encoded content",
			raw:  `{"content": "{\"article\": \"inner\"}"}`,
			want: "inner",
		},
		{
			name: "nested object",
			raw:  `{"content": {"article_content": "deep"}}`,
			want: "deep",
		},
		{
			name: "object without known fields returned as text",
			raw:  `{"article_title": "T", "article_outline": "O"}`,
			want: `{"article_title": "T", "article_outline": "O"}`,
		},
		{
			name: "fenced json with language tag",
			raw:  "```json\n{\"article\":\"hello\"}\n```",
			want: "hello",
		},
		{
			name: "fenced json without language tag",
			raw:  "```\n{\"article\":\"hello\"}\n```",
			want: "hello",
		},
		{
			name: "fenced markdown",
			raw:  "```markdown\n# Title\n\nBody\n```",
			want: "# Title\n\nBody",
		},
		{
			name: "embedded json in prose",
			raw:  `Sure! {"article":"hi"} Hope that helps.`,
			want: "hi",
		},
		{
			name: "leading text before object",
			raw:  "Here you go:\n{\"article_content\": \"draft\"}",
			want: "draft",
		},
		{
			name: "two objects in prose picks the one with a known field",
			raw:  `First {"note": "x"} then {"article": "second"} done`,
			want: "second",
		},
		{
			name: "braces inside strings do not confuse the scanner",
			raw:  `Result: {"article": "use {curly} braces"} and {stray`,
			want: "use {curly} braces",
		},
		{
			name: "fenced field body loses its fences",
			raw:  "{\"article\": \"```markdown\\none two three four\\n```\"}",
			want: "one two three four",
		},
		{
			name: "field body is trimmed",
			raw:  `{"content": "  padded body \n"}`,
			want: "padded body",
		},
		{
			name: "wrapper sentences around object",
			raw:  "Here is the article in JSON format:\n\n{\"article\": \"draft\"}\n\nLet me know if you need changes!",
			want: "draft",
		},
		{
			name: "object quoted inside article prose is left alone",
			raw:  `An article about JSON. Example: {"content": "oops"} end.`,
			want: `An article about JSON. Example: {"content": "oops"} end.`,
		},
		{
			name: "object after a long lead-in is left alone",
			raw:  strings.Repeat("word ", 40) + `{"article": "oops"}`,
			want: strings.Repeat("word ", 40) + `{"article": "oops"}`,
		},
		{
			name: "whitespace only is empty",
			raw:  " \n\t ",
			want: "",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.raw))
		})
	}
}

func TestExtractNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"}",
		"}{",
		"{{{{",
		`{"article": "trunc`,
		`{"article": `,
		"```",
		"``````",
		"```json\n{",
		`{"content": "{\"content\": \"{\\\"content\\\": 1}\"}"}`,
		`{"article": null}`,
		`{"article": 42}`,
		`[1, 2, 3]`,
		"\x00\xff{\"a\":",
		strings.Repeat("{", 10000),
		strings.Repeat(`{"content":`, 50),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() { _ = Extract(in) }, "input %q", in)
		assert.NotPanics(t, func() { _, _ = ParseObject(in) }, "input %q", in)
	}
}

func TestExtractIdempotent(t *testing.T) {
	inputs := []string{
		"Plain text article.",
		"# Heading\n\nParagraph one.\n\nParagraph two.",
		`{"article": "body"}`,
		"```json\n{\"content\":\"fenced\"}\n```",
		`Sure! {"article":"hi"} Hope that helps.`,
		`{"unrelated": true}`,
		"not json {at all",
		"{\"article\": \"```markdown\\none two three four\\n```\"}",
		`{"content": "{\"article\": \"  nested  \"}"}`,
		`An article about JSON. Example: {"content": "oops"} end.`,
	}

	for _, in := range inputs {
		once := Extract(in)
		assert.Equal(t, once, Extract(once), "input %q", in)
	}
}

func TestExtractPlainTextWithoutBraceIsIdentity(t *testing.T) {
	inputs := []string{
		"word1 word2 word3",
		"  leading and trailing spaces  ",
		"Line one\nLine two\n",
		"Prices start at $3,500 per month.",
		"  hello ```x",
		"Use ``` to open a code block.",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Extract(in))
	}
}

func TestParseObject(t *testing.T) {
	obj, ok := ParseObject("```json\n{\"article_title\": \"T\", \"article_outline\": [\"a\", \"b\"]}\n```")
	assert.True(t, ok)
	assert.Equal(t, "T", FieldString(obj, "article_title"))
	assert.Equal(t, "a\nb", FieldString(obj, "article_outline"))

	obj, ok = ParseObject(`Here it is: {"meta_title": "M"} thanks`)
	assert.True(t, ok)
	assert.Equal(t, "M", FieldString(obj, "meta_title"))

	_, ok = ParseObject("no object here")
	assert.False(t, ok)

	_, ok = ParseObject(`["array"]`)
	assert.False(t, ok)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "no fences", StripFences("no fences"))
	assert.Equal(t, "body", StripFences("```text\nbody\n```"))
	assert.Equal(t, "intro\nbody\noutro", StripFences("intro\n```\nbody\n```\noutro"))
	assert.Equal(t, `{"a": 1}`, StripFences("```{\"a\": 1}```"))
	assert.Equal(t, "  hello ```x", StripFences("  hello ```x"))
}
