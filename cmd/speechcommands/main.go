// Package main is the entry point for the speechcommands CLI.
//
// Usage:
//
//	speechcommands [flags] <command> [args]
//
// Commands:
//
//	serve      - Run the explorer web app
//	fetch      - Download and extract the dataset
//	sample     - Pick random clips from the dataset
//	inspect    - Summarize a WAV file and plot its waveform
//	history    - List recent inspections
//	config     - Show or initialize the configuration
//	version    - Show version information
package main

import (
	"os"

	"github.com/haivivi/speechcommands/cmd/speechcommands/commands"
	"github.com/haivivi/speechcommands/pkg/cli"
)

func main() {
	if err := commands.Execute(); err != nil {
		cli.PrintError("%v", err)
		os.Exit(1)
	}
}
