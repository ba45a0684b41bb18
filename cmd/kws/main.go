// Package main is the entry point for the kws CLI.
//
// Usage:
//
//	kws [flags] <command> [subcommand] [args]
//
// Commands:
//
//	classify   - Classify clips from a directory or S3 prefix
//	results    - Inspect stored runs (list, get, delete)
//	clips      - List and upload clips (ls, put)
//	serve      - Serve the pipeline over WebSocket
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/kws/cmd/kws/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
