// Package service contains the application use cases: project and keyword
// management, article generation and community revisions.
//
// Services coordinate the stores (internal/store), the external collaborators
// (internal/keywords, internal/community) and the generation loop
// (internal/generation). They never depend on concrete infrastructure.
//
// Generation operations return a GenerationResult holding the loop Outcome
// together with its priced usage. A failed generation is not an error: the
// Outcome says why it failed, and errors are reserved for missing records,
// invalid input and unavailable collaborators.
package service
