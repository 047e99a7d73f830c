// Package cli implements the gridsens command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to a small command function for the actual work:
//
//	gridsens            - open the dashboard (the default command)
//	gridsens profiles   - list saved layout profiles
//	gridsens check      - validate a layout profile without opening it
//	gridsens version    - print build information
//	gridsens completion - generate shell completion scripts
//
// # Startup
//
// The root command loads the settings file, registers every built-in
// source and displayer type, and assembles a workspace before handing the
// terminal to the TUI. Type registration happens exactly once here; a
// duplicate type key is a programming error and aborts startup.
//
// # Flag Handling
//
// Global flags (--config, --profile, --verbose, --no-color) are defined on
// the root command and available to all subcommands. --verbose routes
// debug logging through the env-gated logger; --no-color forces a plain
// color profile before any rendering happens.
package cli
