// Package main is the entry point for the suara voice assistant.
//
// Usage:
//
//	suara [flags] [command]
//
// Commands:
//
//	interactive - record, transcribe, reply and speak in a loop (default)
//	file        - run one turn over a WAV file
//	serve       - HTTP and websocket server over the same pipeline
//	content     - generate marketing copy
//	benchmark   - measure language model latency
//	devices     - list audio input devices
//	voices      - list synthesis voices
package main

import (
	"fmt"
	"os"

	"github.com/satriahrh/suara/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
