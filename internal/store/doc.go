// Package store defines the persistence interfaces used by the services, the
// error values store implementations return, and transaction helpers.
package store
