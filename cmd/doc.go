// Package cmd implements the command-line interface for reserve-it.
//
// This package provides the following commands:
//   - watch: Print Busy or Available for the configured calendar every second
//   - version: Display version information
//
// The watch command is the default command when no subcommand is specified.
package cmd
