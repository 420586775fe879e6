package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set by the release build with -ldflags "-X main.version=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildMetadata describes the running binary.
type buildMetadata struct {
	Version string
	Commit  string
	Date    string
}

// readBuildMetadata prefers ldflags values and falls back to the module and
// VCS information embedded by the go tool.
func readBuildMetadata() buildMetadata {
	meta := buildMetadata{Version: version, Commit: commit, Date: date}

	if info, ok := debug.ReadBuildInfo(); ok {
		if meta.Version == "" {
			meta.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && meta.Commit == "":
				meta.Commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && meta.Date == "":
				meta.Date = s.Value
			}
		}
	}

	if meta.Version == "" {
		meta.Version = "(devel)"
	}
	if meta.Commit == "" {
		meta.Commit = "unknown"
	}
	if meta.Date == "" {
		meta.Date = "unknown"
	}
	return meta
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			meta := readBuildMetadata()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sightscan version %s\n", meta.Version)
			fmt.Fprintf(out, "  commit: %s\n", meta.Commit)
			fmt.Fprintf(out, "  built:  %s\n", meta.Date)
		},
	}
}
