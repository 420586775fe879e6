// Package main provides the entry point for the SightScan CLI.
//
// SightScan crawls client websites and records whether each one embeds the
// SightMap interactive map widget.
//
// Usage:
//
//	sightscan scan <url>...
//	sightscan scan --list <file>
//
// See --help for all available options.
package main

// main is the entry point for SightScan.
func main() {
	Execute()
}
