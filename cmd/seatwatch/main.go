// Package main is the entry point for the seatwatch CLI.
//
// SeatWatch can be run either as a library (SDK) or as a standalone
// binary. This CLI provides the standalone binary approach.
//
// Usage:
//
//	seatwatch                      # Watch the built-in target every 5 minutes
//	seatwatch -i 0.5               # Watch every 30 seconds
//	seatwatch -c seatwatch.yaml    # Watch a configured target
//	seatwatch validate -c seatwatch.yaml
//	seatwatch version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd watches the target when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "seatwatch",
	Short: "Watch a seat-map endpoint and report sold-seat changes",
	Long: `SeatWatch polls a seat-availability JSON endpoint on an interval,
counts the seats matching a query expression, and prints the count
together with its change since the previous check:

  [2026-03-01T19:04:05Z] Sold seats: 34
  [2026-03-01T19:09:05Z] Sold seats: 36 (+2)

Without flags it watches the built-in event endpoint every 5 minutes.
Use --interval to change the cadence (fractional minutes accepted) or
--config to watch a different target:

  target:
    name: Box Office
    url: https://seatmap.example.com/v1/events/4821/seats?key=${SEATMAP_KEY}
    query: count:seats[3]=SOLD

SeatWatch runs until interrupted (Ctrl+C) or it receives SIGTERM.
Transient network failures are logged and never stop the watch.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runWatch,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this seatwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("seatwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
