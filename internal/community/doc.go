// Package community is a client for the senior living community database API.
// It fetches communities with their care areas, floor plans, and amenities,
// and assembles them into the details block used by community revision prompts.
package community
