// Package task runs persisted background work. Tasks are saved before they
// are queued, workers record each status change, and unfinished tasks are
// rebuilt from their stored records through a Registry when the runner
// starts again.
package task
