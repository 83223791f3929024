// Package generation drives LLM-backed content production through a bounded
// generate/validate loop.
//
// A Controller sends a prompt to a Generator, normalizes the raw response with
// Extract, and evaluates the caller's Validators in order. When a validator
// fails, the request's ExpansionFunc builds a corrective prompt from the
// previous payload and the failure, and the loop tries again until the attempt
// budget is spent. Every failure mode, including backend errors and panics, is
// reported through the returned Outcome; Run never returns an error.
//
// Backends live in internal/platform (gemini, openai) and are adapted to the
// Generator interface defined here.
package generation
