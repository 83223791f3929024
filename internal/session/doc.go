// Package session keeps per-browser working state: the selected project and
// article, unsaved drafts, refine instructions, model choice and token usage
// history.
//
// State is a plain value. Handlers read it from the request context, change a
// copy, and persist the copy through a Store. Nothing in the generation
// packages depends on this package.
package session
