// Package main implements the entry point for the OBO API server, which
// serves flashcard decks from PostgreSQL to the browser viewer and the
// mobile client.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
