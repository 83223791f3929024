// Package openai implements generation.Generator with the OpenAI chat
// completions API. BaseURL lets it target any OpenAI-compatible endpoint.
package openai
