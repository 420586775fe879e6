package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for SightScan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sightscan",
		Short: "Detect SightMap embeds on websites",
		Long: `SightScan crawls websites and records whether each one embeds the
SightMap interactive map widget.

For every site it checks the home page and the top-level pages linked from
it, stopping at the first page that contains a SightMap frame. Results are
written to "SightMap Tracker Results.csv" after every site.`,
		Version:       readBuildMetadata().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
