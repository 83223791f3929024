// Package api exposes the article workflow over HTTP. Handlers decode and
// validate requests, call the services, keep the per-browser session state
// current, and map errors to client-safe responses.
package api
