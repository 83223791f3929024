// Package config loads server, database, LLM, SEMrush, community API, session
// and job settings from a YAML file, a .env file and GROVER_* environment
// variables, then validates them.
package config
