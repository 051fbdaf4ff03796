package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "promptc",
	Short:         "promptc compiles TSX command/agent authoring sources to Markdown",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagLogLevel  string
	flagLogFormat string
)

// Logging is configured the same way for every subcommand.
func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
