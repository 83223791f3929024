// Package main is the grover server and command-line entry point.
//
// Running the binary without a subcommand serves the HTTP API. The migrate
// subcommand manages the database schema and generate runs a single
// generation loop from the terminal.
package main

import (
	"os"

	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
