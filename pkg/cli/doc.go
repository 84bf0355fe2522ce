// Package cli provides terminal helpers for the speechcommands command-line
// tool: result output (YAML, JSON, table) with optional jq filtering, styled
// status banners and human-readable formatting.
//
// Example usage:
//
//	cli.PrintSuccess("Dataset downloaded and extracted!")
//
//	cli.Output(samples, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Query:  ".[].label",
//	})
package cli
