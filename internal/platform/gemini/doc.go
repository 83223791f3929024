// Package gemini implements generation.Generator on top of Google's Gemini
// API through the google.golang.org/genai client.
//
// The generator sends one prompt per call and returns the raw completion
// text with its token usage. It does not retry: the generation loop owns the
// attempt budget, so transport errors are reported back to it, classified as
// transient, blocked, or invalid.
package gemini
