// Package prompts renders the LLM prompts used by the content services from
// an embedded YAML catalog of text/template templates.
package prompts
